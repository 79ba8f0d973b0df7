package psalm

// Jurisdiction is a country/region used to tailor prompt content. Codes
// are advisory; nothing validates them against legal taxonomies.
type Jurisdiction struct {
	Code string
	Name string
}

// Jurisdictions lists the regions offered by the picker.
var Jurisdictions = []Jurisdiction{
	{Code: "us", Name: "United States"},
	{Code: "uk", Name: "United Kingdom"},
	{Code: "eu", Name: "European Union"},
	{Code: "ca", Name: "Canada"},
	{Code: "au", Name: "Australia"},
	{Code: "de", Name: "Germany"},
	{Code: "fr", Name: "France"},
	{Code: "sg", Name: "Singapore"},
	{Code: "in", Name: "India"},
	{Code: "other", Name: "Other"},
}

// LookupJurisdiction returns the jurisdiction for a code.
func LookupJurisdiction(code string) (Jurisdiction, bool) {
	for _, j := range Jurisdictions {
		if j.Code == code {
			return j, true
		}
	}
	return Jurisdiction{}, false
}
