package flatten

import (
	"slices"

	"github.com/moltwatch/censyscollect/internal/model"
)

// Flatten derives one row per HTTP-bearing endpoint whose page title is a
// member of the title allow-list. Matching is exact string equality,
// case-sensitive, with no normalization.
//
// Host-level fields are extracted once per document; each service
// contributes its port/name/transport and at most one software triple
// (the first entry of its software list); each matching endpoint
// contributes its HTTP fields. Endpoints without HTTP info or with a
// non-matching title contribute nothing.
func Flatten(doc *model.HostDocument, titles []string) []model.FlattenedRow {
	if doc == nil {
		return nil
	}

	host := hostFields(doc)

	var rows []model.FlattenedRow
	for i := range doc.Services {
		svc := &doc.Services[i]

		var software *model.SoftwareEntry
		if len(svc.Software) > 0 {
			software = &svc.Software[0]
		}

		for j := range svc.Endpoints {
			httpInfo := svc.Endpoints[j].HTTP
			if httpInfo == nil {
				continue
			}
			if httpInfo.HTMLTitle == nil || !slices.Contains(titles, *httpInfo.HTMLTitle) {
				continue
			}

			row := host
			row.Port = svc.Port
			row.ServiceName = svc.ServiceName
			row.TransportProtocol = svc.TransportProtocol
			if software != nil {
				row.SoftwareProduct = software.Product
				row.SoftwareVendor = software.Vendor
				row.SoftwareVersion = software.Version
			}
			row.HTTPScheme = httpInfo.Scheme
			row.HTTPHost = httpInfo.Host
			row.HTTPPath = httpInfo.Path
			row.HTTPStatusCode = httpInfo.StatusCode
			row.HTTPHTMLTitle = httpInfo.HTMLTitle

			rows = append(rows, row)
		}
	}

	return rows
}

// hostFields extracts the host-level columns shared by every row of a
// document.
func hostFields(doc *model.HostDocument) model.FlattenedRow {
	row := model.FlattenedRow{IP: doc.IP}

	if loc := doc.Location; loc != nil {
		row.Country = loc.Country
		row.Province = loc.Province
		row.City = loc.City
		row.PostalCode = loc.PostalCode
		row.Latitude = loc.Latitude
		row.Longitude = loc.Longitude
	}

	if as := doc.AutonomousSystem; as != nil {
		row.ASN = as.ASN
		row.ASName = as.Name
	}

	return row
}
