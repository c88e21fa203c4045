package dnsops

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdnsweb/internal/model"
)

func TestParseServerList(t *testing.T) {
	servers, err := ParseServerList("1.1.1.1:53, 8.8.8.8:53")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.1.1.1:53", "8.8.8.8:53"}, servers)
}

func TestParseServerListDedupesCaseInsensitively(t *testing.T) {
	servers, err := ParseServerList("DNS.Example.com:53, dns.example.com:53, 1.1.1.1:53")
	require.NoError(t, err)
	assert.Equal(t, []string{"DNS.Example.com:53", "1.1.1.1:53"}, servers)
}

func TestParseServerListRejectsBadEntries(t *testing.T) {
	for _, raw := range []string{
		"1.1.1.1",          // no port
		"1.1.1.1:0",        // port out of range
		"1.1.1.1:65536",    // port out of range
		"1.1.1.1:notaport", // not a number
		"",                 // nothing at all
		" , , ",            // only separators
	} {
		_, err := ParseServerList(raw)
		assert.Error(t, err, "expected %q to be rejected", raw)
	}
}

func TestRemoveForwardZoneRefusesRoot(t *testing.T) {
	rec := &fakeRecursor{}
	recSrv := httptest.NewServer(rec.handler(t))
	defer recSrv.Close()

	svc := newTestService("http://127.0.0.1:0", recSrv.URL)
	res := svc.RemoveForwardZone(context.Background(), ".")

	assert.True(t, res.Failed())
	assert.Empty(t, rec.deletes, "the root check must run before any API call")
}

func TestRemoveForwardZone(t *testing.T) {
	rec := &fakeRecursor{}
	recSrv := httptest.NewServer(rec.handler(t))
	defer recSrv.Close()

	svc := newTestService("http://127.0.0.1:0", recSrv.URL)
	res := svc.RemoveForwardZone(context.Background(), "example.com")

	require.True(t, res.OK())
	assert.Equal(t, []string{"example.com."}, rec.deletes)
}

func TestAddForwardZoneTargetsLocalListener(t *testing.T) {
	rec := &fakeRecursor{}
	recSrv := httptest.NewServer(rec.handler(t))
	defer recSrv.Close()

	svc := newTestService("http://127.0.0.1:0", recSrv.URL)
	res := svc.AddForwardZone(context.Background(), "example.com")

	require.True(t, res.OK())
	require.Len(t, rec.creates, 1)
	assert.Equal(t, "example.com.", rec.creates[0].Name)
	assert.Equal(t, "Forwarded", rec.creates[0].Kind)
	assert.Equal(t, []string{"127.0.0.1:5300"}, rec.creates[0].Servers)
}

func TestLoadForwardingSeedsMissingRoot(t *testing.T) {
	fake := &fakeAuth{zone: exampleZone()}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	rec := &fakeRecursor{zones: []model.ForwardZone{
		{Name: "other.org.", Kind: "Forwarded", Servers: []string{"127.0.0.1:5300"}},
	}}
	recSrv := httptest.NewServer(rec.handler(t))
	defer recSrv.Close()

	svc := newTestService(srv.URL, recSrv.URL)
	view, err := svc.LoadForwarding(context.Background())

	require.NoError(t, err)
	require.Len(t, rec.creates, 1)
	assert.Equal(t, ".", rec.creates[0].Name)
	assert.Equal(t, []string{"1.1.1.1:53"}, rec.creates[0].Servers)

	// root sorts first; example.com. is authoritative but not yet forwarded
	require.Len(t, view.Forwarded, 2)
	assert.Equal(t, ".", view.Forwarded[0].Name)
	assert.Equal(t, []string{"example.com."}, view.Available)
}

func TestLoadForwardingIgnoresNonForwardedKinds(t *testing.T) {
	fake := &fakeAuth{zone: exampleZone()}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	rec := &fakeRecursor{zones: []model.ForwardZone{
		{Name: ".", Kind: "Forwarded", Servers: []string{"1.1.1.1:53"}},
		{Name: "example.com.", Kind: "forwarded", Servers: []string{"127.0.0.1:5300"}},
		{Name: "native.org.", Kind: "Native"},
	}}
	recSrv := httptest.NewServer(rec.handler(t))
	defer recSrv.Close()

	svc := newTestService(srv.URL, recSrv.URL)
	view, err := svc.LoadForwarding(context.Background())

	require.NoError(t, err)
	assert.Empty(t, rec.creates, "root already present")
	require.Len(t, view.Forwarded, 2, "kind match is case-insensitive, Native excluded")
	assert.Empty(t, view.Available)
}

func TestUpdateRootServers(t *testing.T) {
	rec := &fakeRecursor{}
	recSrv := httptest.NewServer(rec.handler(t))
	defer recSrv.Close()

	svc := newTestService("http://127.0.0.1:0", recSrv.URL)
	res := svc.UpdateRootServers(context.Background(), "9.9.9.9:53, 1.1.1.1:53")

	require.True(t, res.OK(), res.Message)
	require.Len(t, rec.puts, 1)
	assert.Equal(t, ".", rec.puts[0].Name)
	assert.Equal(t, []string{"9.9.9.9:53", "1.1.1.1:53"}, rec.puts[0].Servers)
}

func TestForwardingOpsFailWhenRecursorDisabled(t *testing.T) {
	svc := newTestService("http://127.0.0.1:0", "")

	_, err := svc.LoadForwarding(context.Background())
	assert.ErrorIs(t, err, ErrRecursorDisabled)
	assert.True(t, svc.AddForwardZone(context.Background(), "x.org").Failed())
	assert.True(t, svc.RemoveForwardZone(context.Background(), "x.org").Failed())
	assert.True(t, svc.UpdateRootServers(context.Background(), "1.1.1.1:53").Failed())
}
