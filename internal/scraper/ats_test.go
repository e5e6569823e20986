package scraper

import "testing"

func TestClassifyVendor(t *testing.T) {
	tests := []struct {
		url  string
		want Vendor
	}{
		{"https://acme.wd1.myworkdayjobs.com/en-US/careers/job/123", VendorWorkday},
		{"https://boards.greenhouse.io/acme/jobs/456", VendorGreenhouse},
		{"https://jobs.lever.co/acme/789", VendorLever},
		{"https://careers-acme.icims.com/jobs/111", VendorICIMS},
		{"https://acme.bamboohr.com/careers/22", VendorBambooHR},
		{"https://jobs.smartrecruiters.com/Acme/33", VendorSmartRecruiters},
		{"https://jobs.jobvite.com/acme/job/44", VendorJobvite},
		{"https://acme.taleo.net/careersection/2/jobdetail.ftl", VendorTaleo},
		{"https://career5.successfactors.eu/career?company=acme", VendorSuccessFactors},
		{"https://www.acme.com/careers/55", VendorUnknown},
		{"", VendorUnknown},
	}

	for _, tt := range tests {
		if got := ClassifyVendor(tt.url); got != tt.want {
			t.Errorf("ClassifyVendor(%q) = %s, want %s", tt.url, got, tt.want)
		}
	}
}
