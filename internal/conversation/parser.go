package conversation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/paintquote/backend/internal/calculator"
)

// Parsed is what could be extracted from one customer message.
type Parsed struct {
	Update  Update
	Confirm bool
	Deny    bool
	Restart bool
	Text    string
}

const number = `(\d[\d,]*(?:\.\d+)?)`

var (
	emailPattern   = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern   = regexp.MustCompile(`(?:\+?1[\s.\-]?)?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}\b`)
	addressPattern = regexp.MustCompile(`(?i)\b\d{1,6}\s+(?:[A-Za-z0-9.'\-]+\s+){0,4}?(?:street|st|avenue|ave|road|rd|drive|dr|lane|ln|boulevard|blvd|court|ct|way|place|pl|circle|cir|terrace|parkway|pkwy)\b\.?(?:,\s*[A-Za-z]+(?:\s[A-Za-z]+){0,2})?(?:,\s*[A-Za-z]{2})?(?:\s+\d{5})?`)
	addressLabel   = regexp.MustCompile(`(?i)\baddress(?:\s+is|:)\s*([^\n;]+)`)
	namePattern    = regexp.MustCompile(`(?i)\b(?:my name is|name is|name:|i am|i'm|this is|call me)\s+([A-Za-z][A-Za-z'\-]*(?:\s+[A-Za-z][A-Za-z'\-]*){0,3})`)
	bareName       = regexp.MustCompile(`^[A-Za-z][A-Za-z'\-]*(?:\s+[A-Za-z][A-Za-z'\-]*){0,3}$`)
	greeting       = regexp.MustCompile(`(?i)^(?:hi|hello|hey|howdy|good (?:morning|afternoon|evening)|thanks?(?: you)?)\b`)

	restartPattern = regexp.MustCompile(`(?i)\b(?:start over|restart|reset|begin again|new quote)\b`)
	confirmPattern = regexp.MustCompile(`(?i)^\s*(?:yes|yeah|yep|yup|sure|ok|okay|correct|confirm(?:ed)?|looks good|sounds good|perfect|y)\b`)
	denyPattern    = regexp.MustCompile(`(?i)^\s*(?:no|nope|nah|not yet|n)\b`)

	bothPattern     = regexp.MustCompile(`(?i)\b(?:both|interior and exterior|exterior and interior|inside and out(?:side)?)\b`)
	interiorPattern = regexp.MustCompile(`(?i)\b(?:interior|inside|indoors?)\b`)
	exteriorPattern = regexp.MustCompile(`(?i)\b(?:exterior|outside|outdoors?|siding)\b`)

	allSurfaces   = regexp.MustCompile(`(?i)\b(?:everything|all of (?:it|them)|all surfaces|all three)\b`)
	noPrimer      = regexp.MustCompile(`(?i)\b(?:no|without|skip(?: the)?|don'?t need(?: a)?)\s+prim(?:er|ing|e)\b`)
	primerPattern = regexp.MustCompile(`(?i)\bprim(?:er|ing|e)\b`)

	surfaceWords = map[Surface]string{
		SurfaceWalls:    `walls?`,
		SurfaceCeilings: `ceilings?`,
		SurfaceTrim:     `(?:trim|baseboards?|moldings?|mouldings?)`,
	}
	sqftUnit  = `\s*(?:sq(?:uare)?\.?\s*f(?:ee|oo)?t\.?|sqft|sf)?\s*(?:of\s+)?(?:the\s+)?`
	anyNumber = regexp.MustCompile(number)

	surfaceKeywords = map[Surface]*regexp.Regexp{
		SurfaceWalls:    regexp.MustCompile(`(?i)\b` + surfaceWords[SurfaceWalls] + `\b`),
		SurfaceCeilings: regexp.MustCompile(`(?i)\b` + surfaceWords[SurfaceCeilings] + `\b`),
		SurfaceTrim:     regexp.MustCompile(`(?i)\b` + surfaceWords[SurfaceTrim] + `\b`),
	}

	qualityWords = []struct {
		pattern *regexp.Regexp
		quality calculator.PaintQuality
	}{
		{regexp.MustCompile(`(?i)\b(?:premium|luxury|top[- ]of[- ]the[- ]line|high[- ]end)\b`), calculator.QualityPremium},
		{regexp.MustCompile(`(?i)\bbest\b`), calculator.QualityBest},
		{regexp.MustCompile(`(?i)\b(?:better|standard|mid[- ]?range)\b`), calculator.QualityBetter},
		{regexp.MustCompile(`(?i)\b(?:good|basic|economy|budget|cheap(?:est)?)\b`), calculator.QualityGood},
	}
	dollarPattern    = regexp.MustCompile(`\$\s*(\d+(?:\.\d+)?)`)
	perGallonPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:dollars|bucks)?\s*(?:/|per|a)\s*gal(?:lon)?\b`)

	percentPattern  = regexp.MustCompile(`(?i)` + number + `\s*(?:%|percent)`)
	markupLabel     = regexp.MustCompile(`(?i)\bmarkup\D{0,12}` + number)
	noMarkupPattern = regexp.MustCompile(`(?i)\b(?:no|zero)\s+markup\b`)
)

var surfacePatterns = func() map[Surface][2]*regexp.Regexp {
	out := make(map[Surface][2]*regexp.Regexp, len(surfaceWords))
	for surface, word := range surfaceWords {
		out[surface] = [2]*regexp.Regexp{
			regexp.MustCompile(`(?i)` + number + sqftUnit + `\b` + word + `\b`),
			regexp.MustCompile(`(?i)\b` + word + `\b[^\d]{0,20}` + number),
		}
	}
	return out
}()

// Parse extracts the fields relevant to stage from a customer message.
// Fields for other stages are never returned.
func Parse(text string, stage Stage) Parsed {
	p := Parsed{
		Text:    text,
		Restart: restartPattern.MatchString(text),
		Confirm: confirmPattern.MatchString(text),
		Deny:    denyPattern.MatchString(text),
	}

	switch stage {
	case StageCustomerInfo:
		p.Update = parseCustomer(text)
	case StageProjectType:
		p.Update.ProjectType = parseProjectType(text)
	case StageSurfaceSelection:
		p.Update.Surfaces, p.Update.IncludePrimer = parseSurfaces(text)
	case StageDimensions:
		p.Update = parseDimensions(text)
	case StagePaintSelection:
		p.Update.PaintQuality, p.Update.Product = parsePaint(text)
	case StageMarkupSelection:
		p.Update.MarkupPercentage = parseMarkup(text)
	}
	return p
}

func parseCustomer(text string) Update {
	var u Update
	rest := text

	if m := emailPattern.FindString(rest); m != "" {
		u.Email = &m
		rest = strings.Replace(rest, m, " ", 1)
	}
	if m := phonePattern.FindString(rest); m != "" {
		phone := strings.TrimSpace(m)
		u.Phone = &phone
		rest = strings.Replace(rest, m, " ", 1)
	}
	if m := addressLabel.FindStringSubmatch(rest); m != nil {
		addr := strings.Trim(strings.TrimSpace(m[1]), ",.")
		u.Address = &addr
		rest = strings.Replace(rest, m[0], " ", 1)
	} else if m := addressPattern.FindString(rest); m != "" {
		addr := strings.Trim(strings.TrimSpace(m), ",;.")
		u.Address = &addr
		rest = strings.Replace(rest, m, " ", 1)
	}

	if m := namePattern.FindStringSubmatch(rest); m != nil {
		if name := trimName(m[1]); name != "" {
			u.Name = &name
		}
	} else if candidate := strings.Trim(strings.TrimSpace(rest), ",.;"); bareName.MatchString(candidate) && !isKeyword(candidate) {
		u.Name = &candidate
	}
	return u
}

var nameStopWords = map[string]bool{
	"and": true, "my": true, "at": true, "from": true, "here": true,
	"with": true, "email": true, "phone": true, "i": true, "we": true,
}

// trimName cuts a captured name at the first connecting word.
func trimName(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if nameStopWords[strings.ToLower(w)] {
			words = words[:i]
			break
		}
	}
	return strings.Join(words, " ")
}

// isKeyword reports whether a bare reply is a control word rather than a name.
func isKeyword(s string) bool {
	return confirmPattern.MatchString(s) || denyPattern.MatchString(s) ||
		restartPattern.MatchString(s) || greeting.MatchString(s)
}

func parseProjectType(text string) *calculator.ProjectType {
	var t calculator.ProjectType
	interior := interiorPattern.MatchString(text)
	exterior := exteriorPattern.MatchString(text)
	switch {
	case bothPattern.MatchString(text), interior && exterior:
		t = calculator.ProjectBoth
	case interior:
		t = calculator.ProjectInterior
	case exterior:
		t = calculator.ProjectExterior
	default:
		return nil
	}
	return &t
}

func parseSurfaces(text string) ([]Surface, *bool) {
	var surfaces []Surface
	if allSurfaces.MatchString(text) {
		surfaces = append(surfaces, surfaceOrder...)
	} else {
		for _, surface := range surfaceOrder {
			if surfaceKeywords[surface].MatchString(text) {
				surfaces = append(surfaces, surface)
			}
		}
	}

	var primer *bool
	switch {
	case noPrimer.MatchString(text):
		v := false
		primer = &v
	case primerPattern.MatchString(text):
		v := true
		primer = &v
	}
	return surfaces, primer
}

func parseDimensions(text string) Update {
	var u Update
	found := false
	numberFirst := numberLeads(text)
	for _, surface := range surfaceOrder {
		patterns := surfacePatterns[surface]
		if !numberFirst {
			patterns[0], patterns[1] = patterns[1], patterns[0]
		}
		var value *float64
		for _, re := range patterns {
			if m := re.FindStringSubmatch(text); m != nil {
				value = parseNumber(m[1])
				break
			}
		}
		if value == nil {
			continue
		}
		found = true
		switch surface {
		case SurfaceWalls:
			u.WallsSqft = value
		case SurfaceCeilings:
			u.CeilingsSqft = value
		case SurfaceTrim:
			u.TrimSqft = value
		}
	}
	if !found {
		if m := anyNumber.FindString(text); m != "" {
			u.TotalSqft = parseNumber(m)
		}
	}
	return u
}

// numberLeads reports whether the message puts figures before surface
// names ("1200 walls, 400 ceilings") rather than after them.
func numberLeads(text string) bool {
	num := anyNumber.FindStringIndex(text)
	if num == nil {
		return false
	}
	for _, re := range surfaceKeywords {
		if kw := re.FindStringIndex(text); kw != nil && kw[0] < num[0] {
			return false
		}
	}
	return true
}

func parsePaint(text string) (*calculator.PaintQuality, *calculator.PaintProduct) {
	var quality *calculator.PaintQuality
	for _, qw := range qualityWords {
		if qw.pattern.MatchString(text) {
			q := qw.quality
			quality = &q
			break
		}
	}

	var cost *float64
	if m := dollarPattern.FindStringSubmatch(text); m != nil {
		cost = parseNumber(m[1])
	} else if m := perGallonPattern.FindStringSubmatch(text); m != nil {
		cost = parseNumber(m[1])
	}
	if cost == nil || *cost <= 0 {
		return quality, nil
	}
	product := &calculator.PaintProduct{
		ProductName:   "Custom",
		CostPerGallon: *cost,
	}
	if quality != nil {
		product.Quality = *quality
	}
	return quality, product
}

func parseMarkup(text string) *float64 {
	if noMarkupPattern.MatchString(text) {
		zero := 0.0
		return &zero
	}
	if m := percentPattern.FindStringSubmatch(text); m != nil {
		return parseNumber(m[1])
	}
	if m := markupLabel.FindStringSubmatch(text); m != nil {
		return parseNumber(m[1])
	}
	if all := anyNumber.FindAllString(text, -1); len(all) == 1 {
		return parseNumber(all[0])
	}
	return nil
}

func parseNumber(s string) *float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return nil
	}
	return &v
}
