package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/marcus/taskpicker/internal/state"
)

type memStore struct {
	data    map[string][]byte
	loadErr error
	saveErr error
}

func (m *memStore) LoadData(id string) ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data[id], nil
}

func (m *memStore) SaveData(id string, b []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[id] = append([]byte(nil), b...)
	return nil
}

func TestLoad_MissingRecordReturnsDefaults(t *testing.T) {
	s := NewStore(&memStore{}, "task-list")
	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != Default() {
		t.Errorf("Load() = %+v, want defaults", got)
	}
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	m := &memStore{data: map[string][]byte{
		"task-list": []byte(`{"targetFolder":"Projects","legacy":true}`),
	}}
	got, err := NewStore(m, "task-list").Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.TargetFolder != "Projects" {
		t.Errorf("TargetFolder = %q", got.TargetFolder)
	}

	m.data["task-list"] = []byte(`{}`)
	got, err = NewStore(m, "task-list").Load(context.Background())
	if err != nil || got != Default() {
		t.Errorf("Load({}) = %+v, %v", got, err)
	}
}

func TestRoundTripPersistsIdenticalRecord(t *testing.T) {
	m := &memStore{data: map[string][]byte{
		"task-list": []byte(`{"targetFolder":"Notes"}`),
	}}
	s := NewStore(m, "task-list")

	loaded, err := s.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(context.Background(), loaded); err != nil {
		t.Fatal(err)
	}
	if got := string(m.data["task-list"]); got != `{"targetFolder":"Notes"}` {
		t.Errorf("persisted %s", got)
	}
}

func TestErrorsWrapPersistenceFailed(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")

	_, err := NewStore(&memStore{loadErr: boom}, "task-list").Load(ctx)
	if !errors.Is(err, ErrPersistenceFailed) || !errors.Is(err, boom) {
		t.Errorf("load err = %v", err)
	}

	err = NewStore(&memStore{saveErr: boom}, "task-list").Save(ctx, Settings{TargetFolder: "x"})
	if !errors.Is(err, ErrPersistenceFailed) || !errors.Is(err, boom) {
		t.Errorf("save err = %v", err)
	}

	bad := &memStore{data: map[string][]byte{"task-list": []byte(`{not json`)}}
	got, err := NewStore(bad, "task-list").Load(ctx)
	if !errors.Is(err, ErrPersistenceFailed) || got != Default() {
		t.Errorf("decode = %+v, %v", got, err)
	}

	if _, err := NewStore(nil, "task-list").Load(ctx); !errors.Is(err, ErrPersistenceFailed) {
		t.Errorf("nil store err = %v", err)
	}
}

func TestStoreOverPluginData(t *testing.T) {
	vault := t.TempDir()
	s := NewStore(state.ForVault(vault), "task-list")

	if err := s.Save(context.Background(), Settings{TargetFolder: "Inbox"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(context.Background())
	if err != nil || got.TargetFolder != "Inbox" {
		t.Errorf("Load() = %+v, %v", got, err)
	}
}
