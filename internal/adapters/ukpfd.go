package adapters

// UKPFDProfile targets the UK judiciary's Prevention of Future Deaths
// report listing. Reports are kept only when one of their categories
// matches a healthcare category.
var UKPFDProfile = Profile{
	Name:    "uk_pfd",
	Version: "1.0.0",
	Selectors: map[string]string{
		SelListContainer: "article.pfd_single",
		SelTitle:         "h2 a",
		SelDate:          ".pfd_meta_date",
		SelCategories:    ".pfd_meta_categories a",
		SelCoroner:       ".pfd_meta_coroner",
		SelPagination:    ".pagination a.next",
		SelContent:       ".entry-content",
		SelPDFLink:       "a[href*='.pdf']",
		SelDeceased:      ".pfd_meta_deceased",
		SelDateOfDeath:   ".pfd_meta_dod",
		SelDateOfFinding: ".pfd_meta_date_report",
		SelAddressee:     ".pfd_meta_addressee",
	},
	Categories: []string{
		"Hospital Death (Clinical)",
		"Hospital Death (Other)",
		"Medical cause",
		"Community health care and target settings",
		"Mental health related deaths",
		"Emergency services related deaths",
	},
	StripPrefixes: []string{"Coroner:", "Deceased:", "Name:", "Date of death:", "Date of report:"},
}
