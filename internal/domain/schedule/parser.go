// internal/domain/schedule/parser.go
package schedule

import (
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/mo"
)

var (
	ErrNoTemporalExpression = errors.New("no date or time expression found")
	ErrInvalidCalendarDate  = errors.New("expression names an impossible calendar date")
)

const (
	monthPattern    = `enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|setiembre|octubre|noviembre|diciembre|sept|ene|feb|mar|abr|may|jun|jul|ago|sep|oct|nov|dic`
	numWordPattern  = `una|uno|un|dos|tres|cuatro|cinco|seis|siete|ocho|nueve|diez|once|doce|quince|veinte|treinta`
	meridiemPattern = `am\b|pm\b|a\.\s?m\b\.?|p\.\s?m\b\.?`
	periodPattern   = `manana|tarde|noche|madrugada`
)

// All patterns run against folded text (lower case, no accents).
var (
	dayMonthPattern = regexp.MustCompile(`\b(\d{1,2}|primero)(?:ro|ero|do|to|vo|no|mo)?\s+(?:de\s+)?(` + monthPattern + `)\b\.?(?:\s+(?:de|del)\s+(\d{4})\b|,?\s+(\d{4})\b)?`)
	monthDayPattern = regexp.MustCompile(`\b(` + monthPattern + `)\b\.?\s+(\d{1,2})\b(?:,?\s+(\d{4})\b)?`)
	isoDatePattern  = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	numDatePattern  = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})(?:[/-](\d{4}|\d{2}))?\b`)
	relDayPattern   = regexp.MustCompile(`\b(pasado\s+manana|manana|hoy|ayer)\b`)
	weekdayPattern  = regexp.MustCompile(`\b(?:(?:el|este)\s+)?(?:(proximo|siguiente)\s+)?(lunes|martes|miercoles|jueves|viernes|sabado|domingo)\b(?:\s+(proximo|siguiente|que\s+viene)\b)?`)
	offsetPattern   = regexp.MustCompile(`\b(?:en|dentro\s+de)\s+(\d{1,3}|media|(?:` + numWordPattern + `)\b)\s*(minutos?|min|horas?|hrs?|dias?|semanas?)\b`)

	prefixedTimePattern = regexp.MustCompile(`\b(?:a|para|desde)\s+las?\s+(\d{1,2}|(?:` + numWordPattern + `)\b)(?:[:.h](\d{2}))?(?:\s*(?:hrs?|horas|h)\b)?(?:\s+(y\s+media|y\s+cuarto|menos\s+cuarto|en\s+punto)\b)?(?:\s*(` + meridiemPattern + `))?(?:\s+(?:de|por)\s+la\s+(` + periodPattern + `)\b)?`)
	periodTimePattern   = regexp.MustCompile(`\b(\d{1,2})(?:[:.](\d{2}))?\s+(?:de|por)\s+la\s+(` + periodPattern + `)\b`)
	meridiemTimePattern = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(` + meridiemPattern + `)`)
	clockTimePattern    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b(?:\s*(?:hrs?|h)\b)?`)
	hourTimePattern     = regexp.MustCompile(`\b(\d{1,2})\s?(?:hrs|h)\b`)
	noonPattern         = regexp.MustCompile(`\b(?:al?\s+)?(mediodia|medianoche)\b`)
	periodOnlyPattern   = regexp.MustCompile(`\b(?:(?:por|en|de)\s+la|esta)\s+(` + periodPattern + `)\b`)
)

var months = map[string]time.Month{
	"enero": time.January, "ene": time.January,
	"febrero": time.February, "feb": time.February,
	"marzo": time.March, "mar": time.March,
	"abril": time.April, "abr": time.April,
	"mayo": time.May, "may": time.May,
	"junio": time.June, "jun": time.June,
	"julio": time.July, "jul": time.July,
	"agosto": time.August, "ago": time.August,
	"septiembre": time.September, "setiembre": time.September, "sept": time.September, "sep": time.September,
	"octubre": time.October, "oct": time.October,
	"noviembre": time.November, "nov": time.November,
	"diciembre": time.December, "dic": time.December,
}

var weekdays = map[string]time.Weekday{
	"domingo":   time.Sunday,
	"lunes":     time.Monday,
	"martes":    time.Tuesday,
	"miercoles": time.Wednesday,
	"jueves":    time.Thursday,
	"viernes":   time.Friday,
	"sabado":    time.Saturday,
}

var numberWords = map[string]int{
	"un": 1, "uno": 1, "una": 1, "dos": 2, "tres": 3, "cuatro": 4, "cinco": 5,
	"seis": 6, "siete": 7, "ocho": 8, "nueve": 9, "diez": 10, "once": 11,
	"doce": 12, "quince": 15, "veinte": 20, "treinta": 30,
}

// periodHours is the clock time implied by a bare part of the day.
var periodHours = map[string]int{
	"madrugada": 5,
	"manana":    9,
	"tarde":     15,
	"noche":     20,
}

// connectors may sit between two parts of one expression ("mañana a las 3",
// "3 de junio, 11am") and are trimmed from the end of a title.
var connectors = map[string]bool{
	"a": true, "al": true, "el": true, "la": true, "las": true, "de": true, "del": true,
	"en": true, "para": true, "por": true, "y": true, "este": true, "esta": true,
}

type componentKind int

const (
	kindDate componentKind = iota
	kindWeekday
	kindRelDay
	kindDayOffset
	kindClockOffset
	kindTime
)

// component is one recognised piece of an expression, in folded byte offsets.
type component struct {
	kind       componentKind
	start, end int
	invalid    bool

	year    int
	month   time.Month
	day     int
	hasYear bool
	weekday time.Weekday
	strict  bool
	weak    bool
	days    int
	offset  time.Duration
	hour    int
	minute  int
}

// Expression is a temporal phrase found in a text.
type Expression struct {
	// When is the candidate wall-clock time in the parser's zone, before rollover.
	When time.Time
	// HasDate is set when the phrase named a calendar day and month, as opposed
	// to a clock time, a weekday or a relative word like "mañana".
	HasDate bool
	HasYear bool
	HasTime bool
	// Start and End are byte offsets of the phrase in the original text.
	Start, End int
	Text       string
}

// Parser recognises Spanish date and time phrases.
type Parser struct {
	loc *time.Location
}

func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	return &Parser{loc: loc}
}

// Parse returns the most specific expression in text, or None when there is none.
func (p *Parser) Parse(text string, ref time.Time) mo.Option[Expression] {
	expr, err := p.Scan(text, ref)
	if err != nil {
		return mo.None[Expression]()
	}
	return mo.Some(expr)
}

// Scan is Parse with the reason for a missing expression:
// ErrNoTemporalExpression or ErrInvalidCalendarDate.
func (p *Parser) Scan(text string, ref time.Time) (Expression, error) {
	ref = ref.In(p.loc)
	folded := Fold(text)

	comps := selectComponents(collect(folded.Text, ref))
	if len(comps) == 0 {
		return Expression{}, ErrNoTemporalExpression
	}

	best, sawInvalid := bestCluster(folded.Text, comps)
	if best == nil {
		if sawInvalid {
			return Expression{}, ErrInvalidCalendarDate
		}
		return Expression{}, ErrNoTemporalExpression
	}

	expr := p.compose(best, ref)
	start, end := best[0].start, best[len(best)-1].end
	expr.Start = folded.OriginalOffset(start)
	expr.End = folded.OriginalOffset(end)
	expr.Text = folded.Original(start, end)
	return expr, nil
}

func collect(s string, ref time.Time) []component {
	var out []component
	out = append(out, matchDayMonth(s, ref)...)
	out = append(out, matchMonthDay(s, ref)...)
	out = append(out, matchISODate(s)...)
	out = append(out, matchNumericDate(s, ref)...)
	out = append(out, matchRelDay(s)...)
	out = append(out, matchWeekday(s)...)
	out = append(out, matchOffset(s)...)
	out = append(out, matchPrefixedTime(s)...)
	out = append(out, matchPeriodTime(s)...)
	out = append(out, matchMeridiemTime(s)...)
	out = append(out, matchClockTime(s)...)
	out = append(out, matchHourTime(s)...)
	out = append(out, matchNoon(s)...)
	out = append(out, matchPeriod(s)...)
	return out
}

// selectComponents keeps non-overlapping matches, preferring the earliest and,
// on equal start, the longest.
func selectComponents(all []component) []component {
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].start != all[j].start {
			return all[i].start < all[j].start
		}
		return all[i].end-all[i].start > all[j].end-all[j].start
	})
	var kept []component
	end := -1
	for _, c := range all {
		if c.start < end {
			continue
		}
		kept = append(kept, c)
		end = c.end
	}
	return kept
}

// bestCluster groups adjacent components into candidate expressions and picks
// the one with the most parts. On a tie a lone numeric fragment like "1/2"
// loses to anything else, then the earliest wins. Clusters holding an
// impossible date are skipped.
func bestCluster(s string, comps []component) ([]component, bool) {
	var clusters [][]component
	current := []component{comps[0]}
	for _, c := range comps[1:] {
		prev := current[len(current)-1]
		if onlyConnectors(s[prev.end:c.start]) && compatible(current, c) {
			current = append(current, c)
			continue
		}
		clusters = append(clusters, current)
		current = []component{c}
	}
	clusters = append(clusters, current)

	var best []component
	sawInvalid := false
	for _, cl := range clusters {
		if hasInvalid(cl) {
			sawInvalid = true
			continue
		}
		if len(cl) > len(best) || (len(cl) == len(best) && onlyWeak(best) && !onlyWeak(cl)) {
			best = cl
		}
	}
	return best, sawInvalid
}

func onlyConnectors(gap string) bool {
	for _, w := range strings.Fields(strings.ReplaceAll(gap, ",", " ")) {
		if !connectors[w] {
			return false
		}
	}
	return true
}

// compatible refuses a second time of day in one cluster ("a las 3 a las 5").
func compatible(cluster []component, c component) bool {
	if c.kind != kindTime {
		return true
	}
	for _, existing := range cluster {
		if existing.kind == kindTime || existing.kind == kindClockOffset {
			return false
		}
	}
	return true
}

func onlyWeak(cl []component) bool {
	for _, c := range cl {
		if !c.weak {
			return false
		}
	}
	return len(cl) > 0
}

func hasInvalid(cl []component) bool {
	for _, c := range cl {
		if c.invalid {
			return true
		}
	}
	return false
}

var datePriority = []componentKind{kindDate, kindWeekday, kindRelDay, kindDayOffset}

func (p *Parser) compose(cluster []component, ref time.Time) Expression {
	var expr Expression

	for _, c := range cluster {
		if c.kind == kindClockOffset {
			expr.When = ref.Add(c.offset).Truncate(time.Minute)
			expr.HasTime = true
			return expr
		}
	}

	year, month, day := ref.Date()
	hour, minute := ref.Hour(), ref.Minute()

	if c, ok := datePart(cluster); ok {
		switch c.kind {
		case kindDate:
			year, month, day = ref.Year(), c.month, c.day
			if c.hasYear {
				year = c.year
			}
			expr.HasDate = true
			expr.HasYear = c.hasYear
			hour, minute = 12, 0
		case kindWeekday:
			diff := (int(c.weekday) - int(ref.Weekday()) + 7) % 7
			if c.strict && diff == 0 {
				diff = 7
			}
			year, month, day = ref.AddDate(0, 0, diff).Date()
			hour, minute = 12, 0
		case kindRelDay, kindDayOffset:
			year, month, day = ref.AddDate(0, 0, c.days).Date()
		}
	}

	if c, ok := firstOfKind(cluster, kindTime); ok {
		hour, minute = c.hour, c.minute
		expr.HasTime = true
	}

	expr.When = time.Date(year, month, day, hour, minute, 0, 0, p.loc)
	return expr
}

// datePart picks the day of a cluster: an explicit date beats a weekday, which
// beats a relative word or offset.
func datePart(cluster []component) (component, bool) {
	for _, kind := range datePriority {
		if c, ok := firstOfKind(cluster, kind); ok {
			return c, true
		}
	}
	return component{}, false
}

func firstOfKind(cluster []component, kind componentKind) (component, bool) {
	for _, c := range cluster {
		if c.kind == kind {
			return c, true
		}
	}
	return component{}, false
}

func matchDayMonth(s string, ref time.Time) []component {
	var out []component
	for _, m := range dayMonthPattern.FindAllStringSubmatchIndex(s, -1) {
		day := 1
		if g := group(s, m, 1); g != "primero" {
			day, _ = strconv.Atoi(g)
		}
		c := component{kind: kindDate, start: m[0], end: m[1], day: day, month: months[group(s, m, 2)]}
		for _, yg := range []int{3, 4} {
			if y := group(s, m, yg); y != "" {
				c.year, _ = strconv.Atoi(y)
				c.hasYear = true
			}
		}
		out = append(out, validateDate(c, ref))
	}
	return out
}

func matchMonthDay(s string, ref time.Time) []component {
	var out []component
	for _, m := range monthDayPattern.FindAllStringSubmatchIndex(s, -1) {
		// Month-first "mar" needs its dot: "el mar 5" is not a date.
		if group(s, m, 1) == "mar" && (m[3] >= len(s) || s[m[3]] != '.') {
			continue
		}
		day, _ := strconv.Atoi(group(s, m, 2))
		c := component{kind: kindDate, start: m[0], end: m[1], day: day, month: months[group(s, m, 1)]}
		if y := group(s, m, 3); y != "" {
			c.year, _ = strconv.Atoi(y)
			c.hasYear = true
		}
		out = append(out, validateDate(c, ref))
	}
	return out
}

func matchISODate(s string) []component {
	var out []component
	for _, m := range isoDatePattern.FindAllStringSubmatchIndex(s, -1) {
		year, _ := strconv.Atoi(group(s, m, 1))
		month, _ := strconv.Atoi(group(s, m, 2))
		day, _ := strconv.Atoi(group(s, m, 3))
		c := component{kind: kindDate, start: m[0], end: m[1], year: year, month: time.Month(month), day: day, hasYear: true}
		out = append(out, validateDate(c, time.Time{}))
	}
	return out
}

func matchNumericDate(s string, ref time.Time) []component {
	var out []component
	for _, m := range numDatePattern.FindAllStringSubmatchIndex(s, -1) {
		day, _ := strconv.Atoi(group(s, m, 1))
		month, _ := strconv.Atoi(group(s, m, 2))
		c := component{kind: kindDate, start: m[0], end: m[1], day: day, month: time.Month(month), weak: true}
		if y := group(s, m, 3); y != "" {
			c.weak = false
			c.year, _ = strconv.Atoi(y)
			if len(y) == 2 {
				c.year += 2000
			}
			c.hasYear = true
		}
		out = append(out, validateDate(c, ref))
	}
	return out
}

// validateDate flags day/month combinations that do not exist in the named year
// (or the reference year when none was given).
func validateDate(c component, ref time.Time) component {
	year := c.year
	if !c.hasYear {
		year = ref.Year()
	}
	if c.month < time.January || c.month > time.December || c.day < 1 {
		c.invalid = true
		return c
	}
	t := time.Date(year, c.month, c.day, 0, 0, 0, 0, time.UTC)
	if t.Month() != c.month || t.Day() != c.day {
		c.invalid = true
	}
	return c
}

func matchRelDay(s string) []component {
	var out []component
	for _, m := range relDayPattern.FindAllStringSubmatchIndex(s, -1) {
		c := component{kind: kindRelDay, start: m[0], end: m[1]}
		switch word := group(s, m, 1); {
		case strings.HasPrefix(word, "pasado"):
			c.days = 2
		case word == "manana":
			c.days = 1
		case word == "ayer":
			c.days = -1
		}
		out = append(out, c)
	}
	return out
}

func matchWeekday(s string) []component {
	var out []component
	for _, m := range weekdayPattern.FindAllStringSubmatchIndex(s, -1) {
		out = append(out, component{
			kind:    kindWeekday,
			start:   m[0],
			end:     m[1],
			weekday: weekdays[group(s, m, 2)],
			strict:  group(s, m, 1) != "" || group(s, m, 3) != "",
		})
	}
	return out
}

func matchOffset(s string) []component {
	var out []component
	for _, m := range offsetPattern.FindAllStringSubmatchIndex(s, -1) {
		amount := group(s, m, 1)
		unit := group(s, m, 2)
		c := component{start: m[0], end: m[1]}

		var n int
		switch {
		case amount == "media":
			if !strings.HasPrefix(unit, "hora") {
				continue
			}
			c.kind = kindClockOffset
			c.offset = 30 * time.Minute
			out = append(out, c)
			continue
		case numberWords[amount] > 0:
			n = numberWords[amount]
		default:
			n, _ = strconv.Atoi(amount)
		}

		switch {
		case strings.HasPrefix(unit, "min"):
			c.kind = kindClockOffset
			c.offset = time.Duration(n) * time.Minute
		case strings.HasPrefix(unit, "h"):
			c.kind = kindClockOffset
			c.offset = time.Duration(n) * time.Hour
		case strings.HasPrefix(unit, "dia"):
			c.kind = kindDayOffset
			c.days = n
		case strings.HasPrefix(unit, "semana"):
			c.kind = kindDayOffset
			c.days = 7 * n
		}
		out = append(out, c)
	}
	return out
}

func matchPrefixedTime(s string) []component {
	var out []component
	for _, m := range prefixedTimePattern.FindAllStringSubmatchIndex(s, -1) {
		raw := group(s, m, 1)
		hour, ok := numberWords[raw]
		if !ok {
			hour, _ = strconv.Atoi(raw)
		}
		minute := 0
		if mm := group(s, m, 2); mm != "" {
			minute, _ = strconv.Atoi(mm)
		}
		quarterTo := false
		switch strings.Join(strings.Fields(group(s, m, 3)), " ") {
		case "y media":
			minute += 30
		case "y cuarto":
			minute += 15
		case "menos cuarto":
			quarterTo = true
		}
		h, mi, valid := clock(hour, minute, group(s, m, 4), group(s, m, 5), !strings.HasPrefix(raw, "0"))
		if !valid {
			continue
		}
		if quarterTo {
			// The hour is read as spoken, then moved back; "las 12 menos cuarto
			// de la noche" wraps to 23:45.
			total := (h*60 + mi - 15 + 24*60) % (24 * 60)
			h, mi = total/60, total%60
		}
		out = append(out, component{kind: kindTime, start: m[0], end: m[1], hour: h, minute: mi})
	}
	return out
}

func matchPeriodTime(s string) []component {
	var out []component
	for _, m := range periodTimePattern.FindAllStringSubmatchIndex(s, -1) {
		hour, _ := strconv.Atoi(group(s, m, 1))
		minute := 0
		if mm := group(s, m, 2); mm != "" {
			minute, _ = strconv.Atoi(mm)
		}
		h, mi, valid := clock(hour, minute, "", group(s, m, 3), false)
		if !valid {
			continue
		}
		out = append(out, component{kind: kindTime, start: m[0], end: m[1], hour: h, minute: mi})
	}
	return out
}

func matchMeridiemTime(s string) []component {
	var out []component
	for _, m := range meridiemTimePattern.FindAllStringSubmatchIndex(s, -1) {
		hour, _ := strconv.Atoi(group(s, m, 1))
		minute := 0
		if mm := group(s, m, 2); mm != "" {
			minute, _ = strconv.Atoi(mm)
		}
		h, mi, valid := clock(hour, minute, group(s, m, 3), "", false)
		if !valid {
			continue
		}
		out = append(out, component{kind: kindTime, start: m[0], end: m[1], hour: h, minute: mi})
	}
	return out
}

func matchClockTime(s string) []component {
	var out []component
	for _, m := range clockTimePattern.FindAllStringSubmatchIndex(s, -1) {
		raw := group(s, m, 1)
		hour, _ := strconv.Atoi(raw)
		minute, _ := strconv.Atoi(group(s, m, 2))
		h, mi, valid := clock(hour, minute, "", "", !strings.HasPrefix(raw, "0"))
		if !valid {
			continue
		}
		out = append(out, component{kind: kindTime, start: m[0], end: m[1], hour: h, minute: mi})
	}
	return out
}

func matchHourTime(s string) []component {
	var out []component
	for _, m := range hourTimePattern.FindAllStringSubmatchIndex(s, -1) {
		hour, _ := strconv.Atoi(group(s, m, 1))
		h, mi, valid := clock(hour, 0, "", "", false)
		if !valid {
			continue
		}
		out = append(out, component{kind: kindTime, start: m[0], end: m[1], hour: h, minute: mi})
	}
	return out
}

func matchNoon(s string) []component {
	var out []component
	for _, m := range noonPattern.FindAllStringSubmatchIndex(s, -1) {
		c := component{kind: kindTime, start: m[0], end: m[1], hour: 12}
		if group(s, m, 1) == "medianoche" {
			c.hour = 0
		}
		out = append(out, c)
	}
	return out
}

func matchPeriod(s string) []component {
	var out []component
	for _, m := range periodOnlyPattern.FindAllStringSubmatchIndex(s, -1) {
		out = append(out, component{
			kind:  kindTime,
			start: m[0],
			end:   m[1],
			hour:  periodHours[group(s, m, 1)],
		})
	}
	return out
}

// clock turns a spoken hour into a 24h clock reading. Hours 1 to 6 with no
// meridiem or part of the day are taken as afternoon when guess is set.
func clock(hour, minute int, meridiem, period string, guess bool) (int, int, bool) {
	if minute < 0 || minute > 59 || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	meridiem = strings.NewReplacer(".", "", " ", "").Replace(meridiem)
	switch {
	case meridiem == "am":
		if hour > 12 || hour == 0 {
			return 0, 0, false
		}
		if hour == 12 {
			hour = 0
		}
	case meridiem == "pm":
		if hour > 12 || hour == 0 {
			return 0, 0, false
		}
		if hour < 12 {
			hour += 12
		}
	case period == "tarde":
		if hour < 12 {
			hour += 12
		}
	case period == "noche":
		if hour == 12 {
			hour = 0
		} else if hour >= 5 && hour < 12 {
			hour += 12
		}
	case period == "madrugada":
		if hour == 12 {
			hour = 0
		}
	case period == "manana":
	case guess && hour >= 1 && hour <= 6:
		hour += 12
	}
	return hour, minute, true
}

func group(s string, m []int, i int) string {
	if m[2*i] < 0 {
		return ""
	}
	return s[m[2*i]:m[2*i+1]]
}
