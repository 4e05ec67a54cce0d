package legacy

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ewen-lbh/loca7/internal/bbcode"
	"github.com/ewen-lbh/loca7/internal/entities"
)

// numberWords normalizes French number words to digits so the rooms
// count regex can match "quatre chambres". "un"/"une" go last.
var numberWords = []struct {
	pattern *regexp.Regexp
	digit   string
}{
	{regexp.MustCompile(`(?i)\bdeux\b`), "2"},
	{regexp.MustCompile(`(?i)\btrois\b`), "3"},
	{regexp.MustCompile(`(?i)\bquatre\b`), "4"},
	{regexp.MustCompile(`(?i)\bcinq\b`), "5"},
	{regexp.MustCompile(`(?i)\bsix\b`), "6"},
	{regexp.MustCompile(`(?i)\bsept\b`), "7"},
	{regexp.MustCompile(`(?i)\bhuit\b`), "8"},
	{regexp.MustCompile(`(?i)\bneuf\b`), "9"},
	{regexp.MustCompile(`(?i)\bdix\b`), "10"},
	{regexp.MustCompile(`(?i)\bun\b`), "1"},
	{regexp.MustCompile(`(?i)\bune\b`), "1"},
}

var (
	// Frequent typo in the legacy descriptions.
	meubleTypoRe = regexp.MustCompile(`(?i)\bùeubl`)
	roomsRe      = regexp.MustCompile(`(?i)\b(\d+)\s+chambre`)
)

// RoomsCount extracts the number of bedrooms from a BBCode description
// by rendering it to plain text, normalizing number words, and matching
// the first "<n> chambre(s)" occurrence. Returns 0 when nothing matches.
func RoomsCount(description string) int {
	text := bbcode.ToPlainText(bbcode.ToHTML(description))
	for _, w := range numberWords {
		text = w.pattern.ReplaceAllString(text, w.digit)
	}
	text = meubleTypoRe.ReplaceAllString(text, "meubl")

	m := roomsRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// kindProbes are checked in precedence order; the first match wins.
// "t1 bis" must come before "t1", and the generic t<digit> before the
// word probes so "t3" doesn't fall through to studio.
var kindProbes = []struct {
	pattern *regexp.Regexp
	kind    entities.AppartmentKind
}{
	{regexp.MustCompile(`\bt1 bis\b`), entities.KindT1Bis},
	{regexp.MustCompile(`\bt1\b`), entities.KindT1},
	{regexp.MustCompile(`\bt2\b`), entities.KindT2},
	{regexp.MustCompile(`\bt\d\b`), entities.KindT3EtPlus},
	{regexp.MustCompile(`\bstudio\b`), entities.KindStudio},
	{regexp.MustCompile(`\bcolocation\b`), entities.KindColocation},
}

// DetectKind infers a listing category from the description text, but
// only when the legacy code is the catch-all "au". Everything else
// keeps its explicit category.
func DetectKind(legacyKind, description string) (entities.AppartmentKind, bool) {
	if legacyKind != "au" {
		return "", false
	}
	text := strings.ToLower(description)
	for _, probe := range kindProbes {
		if probe.pattern.MatchString(text) {
			return probe.kind, true
		}
	}
	return "", false
}

var (
	bicycleParkingRe = regexp.MustCompile(`(\b(parking|cour|local|garage|parc|rack|parcage|rangement|emplacement|range-?)\s*([àa]|pour\s*(mettre\s*(éventuellement)?\s*(des)?)?)?\s*v[ée]los?\b)|(\b(garer|ranger|parquer|déposer)\s*(un|votre|les|des|son|ton)?\s*v[ée]los?\b)`)
	fiberInternetRe  = regexp.MustCompile(`\bfibre\n`)
	elevatorRe       = regexp.MustCompile(`\bascenseur\n`)
)

// DetectBicycleParking probes the description for bicycle storage
// wording. A match means true; no match means unknown, never false,
// since silence is not evidence of absence.
func DetectBicycleParking(description string) *bool {
	return probe(bicycleParkingRe, description)
}

// DetectFiberInternet probes the description for fiber internet.
func DetectFiberInternet(description string) *bool {
	return probe(fiberInternetRe, description)
}

// DetectElevator probes the description for an elevator.
func DetectElevator(description string) *bool {
	return probe(elevatorRe, description)
}

func probe(re *regexp.Regexp, description string) *bool {
	if re.MatchString(strings.ToLower(description)) {
		yes := true
		return &yes
	}
	return nil
}
