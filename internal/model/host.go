package model

import "encoding/json"

// HostDocument is one API record describing a single IP host and its
// observed services. Only the fields consumed by the flatten transform are
// decoded; the verbatim API document is retained in Raw so JSONL output
// reproduces exactly what the API returned.
//
// All scalar fields are pointers: nil means the API omitted the field or
// returned it with an unexpected type. Decoding never fails on shape
// mismatches (see UnmarshalJSON).
type HostDocument struct {
	// IP is the host's IP address.
	IP *string `json:"ip,omitempty"`

	// Location holds geographic fields, when present.
	Location *Location `json:"location,omitempty"`

	// AutonomousSystem holds ASN fields, when present.
	AutonomousSystem *AutonomousSystem `json:"autonomous_system,omitempty"`

	// Services are the observed services on this host.
	Services []ServiceRecord `json:"services,omitempty"`

	// Raw is the verbatim JSON document as returned by the API.
	// It is populated during decoding and excluded from re-marshaling;
	// the exporter prefers it over re-serializing the typed fields.
	Raw json.RawMessage `json:"-"`
}

// Location holds the geographic fields of a host document.
type Location struct {
	Country    *string  `json:"country,omitempty"`
	Province   *string  `json:"province,omitempty"`
	City       *string  `json:"city,omitempty"`
	PostalCode *string  `json:"postal_code,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

// AutonomousSystem holds the AS fields of a host document.
type AutonomousSystem struct {
	ASN  *int    `json:"asn,omitempty"`
	Name *string `json:"name,omitempty"`
}

// ServiceRecord is one observed service on a host.
type ServiceRecord struct {
	Port              *int             `json:"port,omitempty"`
	ServiceName       *string          `json:"service_name,omitempty"`
	TransportProtocol *string          `json:"transport_protocol,omitempty"`
	Software          []SoftwareEntry  `json:"software,omitempty"`
	Endpoints         []EndpointRecord `json:"endpoints,omitempty"`
}

// SoftwareEntry is one software identification attached to a service.
// Only the first entry of a service's software list is consumed downstream.
type SoftwareEntry struct {
	Product *string `json:"product,omitempty"`
	Vendor  *string `json:"vendor,omitempty"`
	Version *string `json:"version,omitempty"`
}

// EndpointRecord is one network-accessible surface of a service.
type EndpointRecord struct {
	// HTTP is present only for HTTP-bearing endpoints.
	HTTP *HTTPInfo `json:"http,omitempty"`
}

// HTTPInfo holds the HTTP response fields of an endpoint.
type HTTPInfo struct {
	HTMLTitle  *string `json:"html_title,omitempty"`
	StatusCode *int    `json:"status_code,omitempty"`
	Host       *string `json:"host,omitempty"`
	Path       *string `json:"path,omitempty"`
	Scheme     *string `json:"scheme,omitempty"`
}

// rawObject is a half-parsed JSON object used for per-field tolerant decoding.
type rawObject map[string]json.RawMessage

// parseObject parses data as a JSON object. The second return value is
// false when data is not an object (wrong type, malformed, or null).
func parseObject(data []byte) (rawObject, bool) {
	var obj rawObject
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// stringPtr extracts key as a string, or nil on absence/type mismatch.
func (o rawObject) stringPtr(key string) *string {
	raw, ok := o[key]
	if !ok {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

// intPtr extracts key as an integer, or nil on absence/type mismatch.
func (o rawObject) intPtr(key string) *int {
	raw, ok := o[key]
	if !ok {
		return nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil
	}
	return &n
}

// floatPtr extracts key as a float, or nil on absence/type mismatch.
func (o rawObject) floatPtr(key string) *float64 {
	raw, ok := o[key]
	if !ok {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return &f
}

// object extracts key as a nested JSON object.
func (o rawObject) object(key string) (rawObject, bool) {
	raw, ok := o[key]
	if !ok {
		return nil, false
	}
	return parseObject(raw)
}

// objects extracts key as a list of JSON objects, skipping elements that
// are not objects. A missing key or a non-list value yields nil.
func (o rawObject) objects(key string) []rawObject {
	raw, ok := o[key]
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	result := make([]rawObject, 0, len(items))
	for _, item := range items {
		if obj, ok := parseObject(item); ok {
			result = append(result, obj)
		}
	}
	return result
}

// UnmarshalJSON decodes a host document tolerantly: every field is
// extracted independently and shape mismatches degrade to absent values.
// The verbatim input is retained in Raw. This method never returns an
// error for well-formed JSON of any shape; a document that is not an
// object at the top level decodes to an empty HostDocument carrying only
// the raw bytes.
func (h *HostDocument) UnmarshalJSON(data []byte) error {
	h.Raw = append(json.RawMessage(nil), data...)

	obj, ok := parseObject(data)
	if !ok {
		return nil
	}

	h.IP = obj.stringPtr("ip")

	if loc, ok := obj.object("location"); ok {
		h.Location = &Location{
			Country:    loc.stringPtr("country"),
			Province:   loc.stringPtr("province"),
			City:       loc.stringPtr("city"),
			PostalCode: loc.stringPtr("postal_code"),
			Latitude:   loc.floatPtr("latitude"),
			Longitude:  loc.floatPtr("longitude"),
		}
	}

	if as, ok := obj.object("autonomous_system"); ok {
		h.AutonomousSystem = &AutonomousSystem{
			ASN:  as.intPtr("asn"),
			Name: as.stringPtr("name"),
		}
	}

	for _, svc := range obj.objects("services") {
		h.Services = append(h.Services, decodeService(svc))
	}

	return nil
}

// decodeService extracts one service record from a half-parsed object.
func decodeService(obj rawObject) ServiceRecord {
	svc := ServiceRecord{
		Port:              obj.intPtr("port"),
		ServiceName:       obj.stringPtr("service_name"),
		TransportProtocol: obj.stringPtr("transport_protocol"),
	}

	for _, sw := range obj.objects("software") {
		svc.Software = append(svc.Software, SoftwareEntry{
			Product: sw.stringPtr("product"),
			Vendor:  sw.stringPtr("vendor"),
			Version: sw.stringPtr("version"),
		})
	}

	for _, ep := range obj.objects("endpoints") {
		svc.Endpoints = append(svc.Endpoints, decodeEndpoint(ep))
	}

	return svc
}

// decodeEndpoint extracts one endpoint record from a half-parsed object.
func decodeEndpoint(obj rawObject) EndpointRecord {
	var ep EndpointRecord
	if httpObj, ok := obj.object("http"); ok {
		ep.HTTP = &HTTPInfo{
			HTMLTitle:  httpObj.stringPtr("html_title"),
			StatusCode: httpObj.intPtr("status_code"),
			Host:       httpObj.stringPtr("host"),
			Path:       httpObj.stringPtr("path"),
			Scheme:     httpObj.stringPtr("scheme"),
		}
	}
	return ep
}
