package model

import "strconv"

// FlattenedRow is one CSV row derived from a single HTTP-bearing endpoint
// whose page title matched the configured allow-list. It combines the
// host-level, service-level, and endpoint-level fields in the fixed order
// returned by CSVHeader.
//
// Fields are pointers because any of them may be absent in the source
// document; absent values render as empty CSV cells. Rows are never
// mutated after creation.
type FlattenedRow struct {
	IP                *string  `json:"ip"`
	Country           *string  `json:"country"`
	Province          *string  `json:"province"`
	City              *string  `json:"city"`
	PostalCode        *string  `json:"postal_code"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	ASN               *int     `json:"asn"`
	ASName            *string  `json:"as_name"`
	Port              *int     `json:"port"`
	ServiceName       *string  `json:"service_name"`
	TransportProtocol *string  `json:"transport_protocol"`
	SoftwareProduct   *string  `json:"software_product"`
	SoftwareVendor    *string  `json:"software_vendor"`
	SoftwareVersion   *string  `json:"software_version"`
	HTTPScheme        *string  `json:"http_scheme"`
	HTTPHost          *string  `json:"http_host"`
	HTTPPath          *string  `json:"http_path"`
	HTTPStatusCode    *int     `json:"http_status_code"`
	HTTPHTMLTitle     *string  `json:"http_html_title"`
}

// CSVHeader returns the fixed column names of the flattened CSV schema,
// in output order. The header is written even when a run matched no rows
// so downstream tooling always has a parseable file.
func CSVHeader() []string {
	return []string{
		"ip", "country", "province", "city", "postal_code", "latitude", "longitude",
		"asn", "as_name",
		"port", "service_name", "transport_protocol",
		"software_product", "software_vendor", "software_version",
		"http_scheme", "http_host", "http_path", "http_status_code", "http_html_title",
	}
}

// Values renders the row as CSV cells in CSVHeader order.
// Absent fields render as empty strings.
func (r *FlattenedRow) Values() []string {
	return []string{
		cellString(r.IP),
		cellString(r.Country),
		cellString(r.Province),
		cellString(r.City),
		cellString(r.PostalCode),
		cellFloat(r.Latitude),
		cellFloat(r.Longitude),
		cellInt(r.ASN),
		cellString(r.ASName),
		cellInt(r.Port),
		cellString(r.ServiceName),
		cellString(r.TransportProtocol),
		cellString(r.SoftwareProduct),
		cellString(r.SoftwareVendor),
		cellString(r.SoftwareVersion),
		cellString(r.HTTPScheme),
		cellString(r.HTTPHost),
		cellString(r.HTTPPath),
		cellInt(r.HTTPStatusCode),
		cellString(r.HTTPHTMLTitle),
	}
}

func cellString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func cellInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func cellFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
