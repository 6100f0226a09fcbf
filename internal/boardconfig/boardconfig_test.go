package boardconfig

import (
	"context"
	"errors"
	"testing"

	"github.com/cardapioweb/activation-board/internal/store"
	"github.com/stretchr/testify/require"
)

type fakeKV struct {
	values map[string][]byte
	getErr error
	setErr error
	sets   []string
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	value, ok := f.values[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return value, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	if f.values == nil {
		f.values = make(map[string][]byte)
	}
	f.values[key] = value
	f.sets = append(f.sets, key)
	return nil
}

func TestLoadDefaultsWhenStoreEmpty(t *testing.T) {
	client := NewClient(&fakeKV{})
	cfg := client.Load(context.Background())
	require.Equal(t, DefaultRoster, cfg.Roster)
	require.Equal(t, DefaultBlacklist, cfg.Blacklist)
}

func TestLoadDefaultsWhenStoreUnreachable(t *testing.T) {
	client := NewClient(&fakeKV{getErr: errors.New("connection refused")})
	cfg := client.Load(context.Background())
	require.Equal(t, DefaultRoster, cfg.Roster)
	require.Equal(t, DefaultBlacklist, cfg.Blacklist)
}

func TestLoadStoredValuesWinOverDefaults(t *testing.T) {
	kv := &fakeKV{values: map[string][]byte{
		"config:roster":    []byte(`["a@x.com"]`),
		"config:blacklist": []byte(`[]`),
	}}
	cfg := NewClient(kv).Load(context.Background())
	require.Equal(t, []string{"a@x.com"}, cfg.Roster)

	// An explicitly empty list is not the same as "never configured".
	require.NotNil(t, cfg.Blacklist)
	require.Empty(t, cfg.Blacklist)
}

func TestLoadMalformedValueFallsBack(t *testing.T) {
	kv := &fakeKV{values: map[string][]byte{
		"config:roster": []byte(`{"oops"`),
	}}
	cfg := NewClient(kv).Load(context.Background())
	require.Equal(t, DefaultRoster, cfg.Roster)
}

func TestSavePersistsOnlyProvidedFields(t *testing.T) {
	kv := &fakeKV{}
	client := NewClient(kv)

	roster := []string{"a@x.com", "b@x.com"}
	require.NoError(t, client.Save(context.Background(), Update{Roster: &roster}))
	require.Equal(t, []string{"config:roster"}, kv.sets)
	require.JSONEq(t, `["a@x.com","b@x.com"]`, string(kv.values["config:roster"]))

	blacklist := []string{"ocupado"}
	require.NoError(t, client.Save(context.Background(), Update{Blacklist: &blacklist}))
	require.Equal(t, []string{"config:roster", "config:blacklist"}, kv.sets)
}

func TestSaveSurfacesStoreErrors(t *testing.T) {
	kv := &fakeKV{setErr: errors.New("write rejected")}
	roster := []string{"a@x.com"}
	err := NewClient(kv).Save(context.Background(), Update{Roster: &roster})
	require.Error(t, err)
}
