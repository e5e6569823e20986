package scraper

import "strings"

// Vendor is the application-tracking system behind an apply URL.
type Vendor string

const (
	VendorWorkday         Vendor = "Workday"
	VendorGreenhouse      Vendor = "Greenhouse"
	VendorLever           Vendor = "Lever"
	VendorICIMS           Vendor = "ICIMS"
	VendorBambooHR        Vendor = "BambooHR"
	VendorSmartRecruiters Vendor = "SmartRecruiters"
	VendorJobvite         Vendor = "Jobvite"
	VendorTaleo           Vendor = "Taleo"
	VendorSuccessFactors  Vendor = "SuccessFactors"
	VendorUnknown         Vendor = "Unknown"
)

// vendor substring table, checked in order against the lowercased URL.
var vendorMarkers = []struct {
	marker string
	vendor Vendor
}{
	{"myworkday", VendorWorkday},
	{"workday", VendorWorkday},
	{"greenhouse.io", VendorGreenhouse},
	{"greenhouse", VendorGreenhouse},
	{"lever.co", VendorLever},
	{"icims.com", VendorICIMS},
	{"bamboohr", VendorBambooHR},
	{"smartrecruiters", VendorSmartRecruiters},
	{"jobvite", VendorJobvite},
	{"taleo", VendorTaleo},
	{"successfactors", VendorSuccessFactors},
}

// ClassifyVendor identifies the ATS behind url by substring match.
func ClassifyVendor(url string) Vendor {
	lower := strings.ToLower(url)
	for _, m := range vendorMarkers {
		if strings.Contains(lower, m.marker) {
			return m.vendor
		}
	}
	return VendorUnknown
}
