package documents

import "testing"

func TestParseAddressBlock(t *testing.T) {
	parsed := ParseAddressBlock("Holistic Roasters USA\n456 Warehouse Blvd\nSuite 12\nNew York, NY 10001")
	if parsed.Name != "Holistic Roasters USA" {
		t.Fatalf("name = %q", parsed.Name)
	}
	if parsed.Street != "456 Warehouse Blvd, Suite 12" {
		t.Fatalf("street = %q", parsed.Street)
	}
	if parsed.City != "New York" || parsed.State != "NY" || parsed.Zip != "10001" {
		t.Fatalf("city/state/zip = %q/%q/%q", parsed.City, parsed.State, parsed.Zip)
	}
}

func TestParseAddressBlockCommaSeparatedZip(t *testing.T) {
	parsed := ParseAddressBlock("Acme Imports\n1 Dock Rd\nNewark, NJ, 07102")
	if parsed.State != "NJ" || parsed.Zip != "07102" {
		t.Fatalf("state/zip = %q/%q", parsed.State, parsed.Zip)
	}
}

func TestParseAddressBlockDegradesGracefully(t *testing.T) {
	cases := []struct {
		in   string
		want ParsedAddress
	}{
		{"", ParsedAddress{}},
		{"Just A Name", ParsedAddress{Name: "Just A Name"}},
		{"Name\nCityOnly", ParsedAddress{Name: "Name", City: "CityOnly"}},
	}
	for _, tc := range cases {
		if got := ParseAddressBlock(tc.in); got != tc.want {
			t.Fatalf("ParseAddressBlock(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}
