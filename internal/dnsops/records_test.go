package dnsops

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdnsweb/internal/config"
	"pdnsweb/internal/model"
	"pdnsweb/internal/pdns"
)

// fakeAuth is an in-memory stand-in for the authoritative API: it serves one
// zone and records every write it receives.
type fakeAuth struct {
	zone        model.Zone
	patches     []model.RRsetPatch
	creates     []model.ZoneCreate
	updates     []model.ZoneUpdate
	keyCreates  []model.DnssecKeyCreate
	keyDeletes  []string
	zoneDeletes []string
	keys        []model.DnssecKey
}

func (f *fakeAuth) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/servers/localhost/zones", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]model.Zone{f.zone})
	})
	mux.HandleFunc("POST /api/v1/servers/localhost/zones", func(w http.ResponseWriter, r *http.Request) {
		var req model.ZoneCreate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.creates = append(f.creates, req)
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("GET /api/v1/servers/localhost/zones/{zone}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(f.zone)
	})
	mux.HandleFunc("PUT /api/v1/servers/localhost/zones/{zone}", func(w http.ResponseWriter, r *http.Request) {
		var req model.ZoneUpdate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.updates = append(f.updates, req)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("PATCH /api/v1/servers/localhost/zones/{zone}", func(w http.ResponseWriter, r *http.Request) {
		var patch model.RRsetPatch
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		f.patches = append(f.patches, patch)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /api/v1/servers/localhost/zones/{zone}", func(w http.ResponseWriter, r *http.Request) {
		f.zoneDeletes = append(f.zoneDeletes, r.PathValue("zone"))
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/v1/servers/localhost/zones/{zone}/cryptokeys", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(f.keys)
	})
	mux.HandleFunc("POST /api/v1/servers/localhost/zones/{zone}/cryptokeys", func(w http.ResponseWriter, r *http.Request) {
		var req model.DnssecKeyCreate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.keyCreates = append(f.keyCreates, req)
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("DELETE /api/v1/servers/localhost/zones/{zone}/cryptokeys/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.keyDeletes = append(f.keyDeletes, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

func testConfig() config.PDNSConfig {
	return config.PDNSConfig{
		SOA:               config.SOAConfig{NS: "ns1.example.com", Mail: "hostmaster.example.com"},
		DefaultA:          "192.0.2.10",
		AuthoritativeAddr: "127.0.0.1:5300",
	}
}

func newTestService(authURL, recursorURL string) *Service {
	var recursor *pdns.Client
	if recursorURL != "" {
		recursor = pdns.NewClient(recursorURL, "test-key")
	}
	return New(pdns.NewClient(authURL, "test-key"), recursor, testConfig(), "", zerolog.Nop())
}

func exampleZone() model.Zone {
	return model.Zone{
		Name: "example.com.",
		Kind: "Native",
		RRsets: []model.RRset{
			{
				Name: "example.com.", Type: "SOA", TTL: 3600,
				Records: []model.Record{{Content: "ns1.example.com. hostmaster.example.com. 2024010101 10800 3600 604800 3600"}},
			},
			{
				Name: "www.example.com.", Type: "A", TTL: 3600,
				Records: []model.Record{{Content: "192.0.2.1"}},
			},
			{
				Name: "example.com.", Type: "MX", TTL: 7200,
				Records: []model.Record{
					{Content: "10 mail.example.com."},
					{Content: "20 backup.example.com."},
				},
			},
		},
	}
}

func TestAddRecordMergesIntoExistingSet(t *testing.T) {
	fake := &fakeAuth{zone: exampleZone()}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	svc := newTestService(srv.URL, "")
	res := svc.AddRecord(context.Background(), "example.com", RecordInput{
		Subdomain: "www", Type: "A", Value: "10.0.0.5", TTL: 3600,
	})

	require.True(t, res.OK(), res.Message)
	require.Len(t, fake.patches, 1)
	rrset := fake.patches[0].RRsets[0]
	assert.Equal(t, "www.example.com.", rrset.Name)
	assert.Equal(t, "A", rrset.Type)
	assert.Equal(t, "REPLACE", rrset.Changetype)
	assert.Equal(t, 3600, rrset.TTL)
	require.Len(t, rrset.Records, 2)
	assert.Equal(t, "192.0.2.1", rrset.Records[0].Content)
	assert.Equal(t, "10.0.0.5", rrset.Records[1].Content)
}

func TestAddFirstRecordDefaultsTTL(t *testing.T) {
	fake := &fakeAuth{zone: exampleZone()}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	svc := newTestService(srv.URL, "")
	res := svc.AddRecord(context.Background(), "example.com", RecordInput{
		Subdomain: "app", Type: "A", Value: "10.0.0.5",
	})

	require.True(t, res.OK(), res.Message)
	require.Len(t, fake.patches, 1)
	rrset := fake.patches[0].RRsets[0]
	assert.Equal(t, "app.example.com.", rrset.Name)
	assert.Equal(t, "A", rrset.Type)
	assert.Equal(t, 3600, rrset.TTL)
	assert.Equal(t, "REPLACE", rrset.Changetype)
	require.Len(t, rrset.Records, 1)
	assert.Equal(t, "10.0.0.5", rrset.Records[0].Content)
	assert.False(t, rrset.Records[0].Disabled)
}

func TestAddRecordRejectsDuplicateBeforeWriting(t *testing.T) {
	fake := &fakeAuth{zone: exampleZone()}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	svc := newTestService(srv.URL, "")
	res := svc.AddRecord(context.Background(), "example.com", RecordInput{
		Subdomain: "www", Type: "A", Value: "192.0.2.1",
	})

	assert.Equal(t, StatusWarning, res.Status)
	assert.Empty(t, fake.patches, "a duplicate must not reach the upstream")
}

func TestAddRecordClampsOutOfRangeTTL(t *testing.T) {
	fake := &fakeAuth{zone: exampleZone()}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	svc := newTestService(srv.URL, "")
	res := svc.AddRecord(context.Background(), "example.com", RecordInput{
		Subdomain: "api", Type: "A", Value: "192.0.2.2", TTL: 100,
	})

	require.True(t, res.OK())
	require.Len(t, fake.patches, 1)
	assert.Equal(t, DefaultTTL, fake.patches[0].RRsets[0].TTL)
}

func TestAddRecordFormatsTypeContent(t *testing.T) {
	tests := []struct {
		name string
		in   RecordInput
		want string
	}{
		{"mx", RecordInput{Subdomain: "@", Type: "MX", Value: "mail.example.com", MXPriority: 10}, "10 mail.example.com."},
		{"srv", RecordInput{Subdomain: "_sip._tcp", Type: "SRV", Value: "sip.example.com", SRVPriority: 0, SRVWeight: 5, SRVPort: 5060}, "0 5 5060 sip.example.com."},
		{"txt", RecordInput{Subdomain: "@", Type: "TXT", Value: "v=spf1 -all"}, `"v=spf1 -all"`},
		{"ns", RecordInput{Subdomain: "@", Type: "NS", Value: "ns2.example.com"}, "ns2.example.com."},
		{"cname", RecordInput{Subdomain: "blog", Type: "CNAME", Value: "www.example.com"}, "www.example.com."},
		{"a", RecordInput{Subdomain: "api", Type: "A", Value: "192.0.2.7"}, "192.0.2.7"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeAuth{zone: exampleZone()}
			srv := httptest.NewServer(fake.handler(t))
			defer srv.Close()

			svc := newTestService(srv.URL, "")
			res := svc.AddRecord(context.Background(), "example.com", tc.in)

			require.True(t, res.OK(), res.Message)
			require.Len(t, fake.patches, 1)
			records := fake.patches[0].RRsets[0].Records
			assert.Equal(t, tc.want, records[len(records)-1].Content)
		})
	}
}

func TestDeleteRecordKeepsSiblings(t *testing.T) {
	fake := &fakeAuth{zone: exampleZone()}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	svc := newTestService(srv.URL, "")
	res := svc.DeleteRecord(context.Background(), "example.com", "example.com.", "MX", "10 mail.example.com.")

	require.True(t, res.OK())
	require.Len(t, fake.patches, 1)
	rrset := fake.patches[0].RRsets[0]
	assert.Equal(t, "REPLACE", rrset.Changetype)
	require.Len(t, rrset.Records, 1)
	assert.Equal(t, "20 backup.example.com.", rrset.Records[0].Content)
}

func TestDeleteLastRecordSwitchesToDeleteChangetype(t *testing.T) {
	fake := &fakeAuth{zone: exampleZone()}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	svc := newTestService(srv.URL, "")
	res := svc.DeleteRecord(context.Background(), "example.com", "www.example.com.", "A", "192.0.2.1")

	require.True(t, res.OK())
	require.Len(t, fake.patches, 1)
	rrset := fake.patches[0].RRsets[0]
	assert.Equal(t, "DELETE", rrset.Changetype)
	assert.Empty(t, rrset.Records)
}

func zoneWithDisabledSibling() model.Zone {
	zone := exampleZone()
	zone.RRsets = append(zone.RRsets, model.RRset{
		Name: "pool.example.com.", Type: "A", TTL: 3600,
		Records: []model.Record{
			{Content: "192.0.2.1", Disabled: true},
			{Content: "192.0.2.2"},
			{Content: "192.0.2.3"},
		},
	})
	return zone
}

func TestDeleteRecordPreservesDisabledSibling(t *testing.T) {
	fake := &fakeAuth{zone: zoneWithDisabledSibling()}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	svc := newTestService(srv.URL, "")
	res := svc.DeleteRecord(context.Background(), "example.com", "pool.example.com.", "A", "192.0.2.2")

	require.True(t, res.OK(), res.Message)
	require.Len(t, fake.patches, 1)
	records := fake.patches[0].RRsets[0].Records
	require.Len(t, records, 2)
	assert.Equal(t, "192.0.2.1", records[0].Content)
	assert.True(t, records[0].Disabled, "untargeted disabled entry must stay disabled")
	assert.Equal(t, "192.0.2.3", records[1].Content)
	assert.False(t, records[1].Disabled)
}

func TestEditRecordPreservesDisabledSibling(t *testing.T) {
	fake := &fakeAuth{zone: zoneWithDisabledSibling()}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	svc := newTestService(srv.URL, "")
	res := svc.EditRecord(context.Background(), "example.com", EditInput{
		Name:     "pool.example.com.",
		Type:     "A",
		OldValue: "192.0.2.3",
		Value:    "192.0.2.9",
	})

	require.True(t, res.OK(), res.Message)
	require.Len(t, fake.patches, 1)
	records := fake.patches[0].RRsets[0].Records
	require.Len(t, records, 3)
	assert.Equal(t, "192.0.2.1", records[0].Content)
	assert.True(t, records[0].Disabled, "untargeted disabled entry must stay disabled")
	assert.Equal(t, "192.0.2.2", records[1].Content)
	assert.Equal(t, "192.0.2.9", records[2].Content)
}

func TestDeleteRecordNotFound(t *testing.T) {
	fake := &fakeAuth{zone: exampleZone()}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	svc := newTestService(srv.URL, "")
	res := svc.DeleteRecord(context.Background(), "example.com", "nope.example.com.", "A", "192.0.2.1")

	assert.True(t, res.Failed())
	assert.Empty(t, fake.patches)
}

func TestEditRecordSwapsOneValue(t *testing.T) {
	fake := &fakeAuth{zone: exampleZone()}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	svc := newTestService(srv.URL, "")
	res := svc.EditRecord(context.Background(), "example.com", EditInput{
		Name:       "example.com.",
		Type:       "MX",
		OldValue:   "10 mail.example.com.",
		Value:      "10 mail.example.com.",
		MXPriority: 30,
	})

	require.True(t, res.OK(), res.Message)
	require.Len(t, fake.patches, 1)
	rrset := fake.patches[0].RRsets[0]
	assert.Equal(t, "REPLACE", rrset.Changetype)
	require.Len(t, rrset.Records, 2)
	assert.Equal(t, "20 backup.example.com.", rrset.Records[0].Content)
	assert.Equal(t, "30 mail.example.com.", rrset.Records[1].Content)
}

func TestEditMXChangesPriorityAndTarget(t *testing.T) {
	fake := &fakeAuth{zone: exampleZone()}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	svc := newTestService(srv.URL, "")
	res := svc.EditRecord(context.Background(), "example.com", EditInput{
		Name:       "example.com.",
		Type:       "MX",
		OldValue:   "10 mail.example.com.",
		Value:      "mail2.example.com",
		MXPriority: 20,
	})

	require.True(t, res.OK(), res.Message)
	require.Len(t, fake.patches, 1)
	records := fake.patches[0].RRsets[0].Records
	require.Len(t, records, 2)
	assert.Equal(t, "20 backup.example.com.", records[0].Content)
	assert.Equal(t, "20 mail2.example.com.", records[1].Content)
}

func TestEditRecordKeepsExistingTTLWhenUnset(t *testing.T) {
	fake := &fakeAuth{zone: exampleZone()}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	svc := newTestService(srv.URL, "")
	res := svc.EditRecord(context.Background(), "example.com", EditInput{
		Name:     "www.example.com.",
		Type:     "A",
		OldValue: "192.0.2.1",
		Value:    "192.0.2.99",
	})

	require.True(t, res.OK())
	require.Len(t, fake.patches, 1)
	assert.Equal(t, 3600, fake.patches[0].RRsets[0].TTL)
}

func TestEditSOAKeepsZeroSerial(t *testing.T) {
	fake := &fakeAuth{zone: exampleZone()}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	svc := newTestService(srv.URL, "")
	res := svc.EditRecord(context.Background(), "example.com", EditInput{
		Name:       "example.com.",
		Type:       "SOA",
		OldValue:   "ns1.example.com. hostmaster.example.com. 2024010101 10800 3600 604800 3600",
		Value:      "unused",
		SOANS:      "ns1.example.com",
		SOAMail:    "hostmaster.example.com",
		SOARefresh: 10800,
		SOARetry:   3600,
		SOAExpire:  604800,
		SOAMinimum: 3600,
	})

	require.True(t, res.OK())
	require.Len(t, fake.patches, 1)
	records := fake.patches[0].RRsets[0].Records
	require.Len(t, records, 1)
	assert.Equal(t, "ns1.example.com. hostmaster.example.com. 0 10800 3600 604800 3600", records[0].Content)
}

func TestAddSubdomainUsesDefaultAddress(t *testing.T) {
	fake := &fakeAuth{zone: exampleZone()}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	svc := newTestService(srv.URL, "")
	res := svc.AddSubdomain(context.Background(), "example.com", "app")

	require.True(t, res.OK())
	require.Len(t, fake.patches, 1)
	rrset := fake.patches[0].RRsets[0]
	assert.Equal(t, "app.example.com.", rrset.Name)
	assert.Equal(t, "A", rrset.Type)
	assert.Equal(t, DefaultTTL, rrset.TTL)
	require.Len(t, rrset.Records, 1)
	assert.Equal(t, "192.0.2.10", rrset.Records[0].Content)
}

func TestAddSubdomainRejectsApex(t *testing.T) {
	fake := &fakeAuth{zone: exampleZone()}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	svc := newTestService(srv.URL, "")
	assert.True(t, svc.AddSubdomain(context.Background(), "example.com", "@").Failed())
	assert.True(t, svc.AddSubdomain(context.Background(), "example.com", "").Failed())
	assert.Empty(t, fake.patches)
}

func TestGroupedRecordsApexFirst(t *testing.T) {
	fake := &fakeAuth{zone: exampleZone()}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	svc := newTestService(srv.URL, "")
	grouped, order, err := svc.GroupedRecords(context.Background(), "example.com")

	require.NoError(t, err)
	require.Equal(t, []string{"@", "www"}, order)
	assert.Len(t, grouped["@"], 2)
	assert.Len(t, grouped["www"], 1)
}
