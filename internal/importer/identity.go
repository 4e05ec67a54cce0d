package importer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ewen-lbh/loca7/internal/legacy"
	"github.com/ewen-lbh/loca7/internal/utils"
)

// emailTypoFixes repairs the handful of provider misspellings that
// recur throughout the legacy contact data.
var emailTypoFixes = []struct {
	pattern *regexp.Regexp
	fixed   string
}{
	{regexp.MustCompile(`(?i)@g[ml]ail\.com`), "@gmail.com"},
	{regexp.MustCompile(`(?i)@[0o]range\.fr`), "@orange.fr"},
	{regexp.MustCompile(`(?i)@9[io][bn]line\.fr`), "@9online.fr"},
}

// FixEmailTypos corrects known provider misspellings in a contact email.
func FixEmailTypos(email string) string {
	for _, fix := range emailTypoFixes {
		email = fix.pattern.ReplaceAllString(email, fix.fixed)
	}
	return email
}

const ghostEmailDomain = "loca7.fr"

// GhostEmail builds a deterministic placeholder address for listings
// whose contact left no email. The legacy owner uuid keeps distinct
// anonymous owners from collapsing into one account.
func GhostEmail(firstName, lastName, ownerUUID string) string {
	parts := []string{"ghost"}
	if s := utils.Slug(firstName); s != "" {
		parts = append(parts, s)
	}
	if s := utils.Slug(lastName); s != "" {
		parts = append(parts, s)
	}
	parts = append(parts, utils.Slug(ownerUUID))
	return fmt.Sprintf("%s@%s", strings.Join(parts, "-"), ghostEmailDomain)
}

// IsGhostEmail reports whether an address was fabricated during import
// and therefore cannot receive mail.
func IsGhostEmail(email string) bool {
	return strings.HasPrefix(email, "ghost-") && strings.HasSuffix(email, "@"+ghostEmailDomain) ||
		email == "ghost@"+ghostEmailDomain
}

// OwnerKey normalizes a listing's contact into the email under which
// its owner account is created: the trimmed lowercase contact email
// with typos fixed, or a ghost address when there is none.
func OwnerKey(listing legacy.Listing) string {
	email := strings.ToLower(strings.TrimSpace(listing.ContactEmail))
	if email == "" {
		email = GhostEmail(listing.ContactFirstName, listing.ContactLastName, listing.OwnerUUID)
	}
	return FixEmailTypos(email)
}

// GroupByOwner buckets listings by owner email. Keys come back sorted
// so two runs over the same dump create users in the same order.
func GroupByOwner(listings []legacy.Listing) ([]string, map[string][]legacy.Listing) {
	groups := make(map[string][]legacy.Listing)
	for _, listing := range listings {
		key := OwnerKey(listing)
		groups[key] = append(groups[key], listing)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, groups
}

var nameSeparators = regexp.MustCompile(`[ -]`)

// PreventAllUppercase rewrites a fully uppercase name ("JEAN-PIERRE")
// into title case. Mixed-case input is left untouched since it was
// typed deliberately.
func PreventAllUppercase(s string) string {
	if s != strings.ToUpper(s) {
		return s
	}
	words := nameSeparators.Split(s, -1)
	for i, w := range words {
		runes := []rune(w)
		if len(runes) == 0 {
			continue
		}
		words[i] = strings.ToUpper(string(runes[:1])) + strings.ToLower(string(runes[1:]))
	}
	return strings.Join(words, " ")
}

// Agency describes a property management agency recognized from its
// email domain.
type Agency struct {
	Name    string
	Website string
}

// agenciesByDomain lists the agencies that advertised on the old site.
var agenciesByDomain = map[string]Agency{
	"athome-ah.com":        {Name: "At Home", Website: "athome-ah.com"},
	"aubuisson.com":        {Name: "Aubuisson", Website: "aubuisson.com"},
	"cegetel.net":          {Name: "Cegetel", Website: "cegetel.net"},
	"cia-toulouse.com":     {Name: "Cabinet Immobilier Araud", Website: "cia-toulouse.com"},
	"dols-invest.fr":       {Name: "Dols Invest", Website: ""},
	"eraimmo.fr":           {Name: "ERA", Website: "era-immobilier-midi-pyrenees.fr"},
	"orpi.com":             {Name: "Orpi", Website: "orpi.com"},
	"privilegeservices.fr": {Name: "LP Services", Website: "www.groupelp-services.com"},
}

// AgencyFromEmail recognizes an agency from the email's domain. The
// zero Agency means a private owner.
func AgencyFromEmail(email string) Agency {
	_, domain, found := strings.Cut(email, "@")
	if !found {
		return Agency{}
	}
	return agenciesByDomain[domain]
}

// ContactPhone prefers the mobile number over the landline.
func ContactPhone(listing legacy.Listing) string {
	if phone := strings.TrimSpace(listing.ContactMobile); phone != "" {
		return phone
	}
	return strings.TrimSpace(listing.ContactPhone)
}
