package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tally/internal/track"
)

func testBundle() *Bundle {
	end := "2026-08-15T10:00:00Z"
	duration := int64(3_600_000)
	return &Bundle{
		Range:       track.TimeRange{StartDate: "2026-08-01", EndDate: "2026-08-31"},
		GeneratedAt: "2026-09-01T12:00:00Z",
		Sessions: []track.Session{
			{
				ID:        "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
				StartTime: "2026-08-15T09:00:00Z",
				EndTime:   &end,
				Duration:  &duration,
				Status:    track.SessionCompleted,
				Tags:      []string{"deep", "refactor"},
			},
		},
		Tags: []track.Tag{
			{ID: "6ba7b811-9dad-11d1-80b4-00c04fd430c8", Name: "deep", UsageCount: 12},
		},
		Stats: []track.DailyStats{
			{Date: "2026-08-15", TotalTime: 3_600_000, SessionsCount: 1, GoalCompletion: 12.5},
		},
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path, err := Write(dir, "json", testBundle())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Ext(path) != ".json" {
		t.Errorf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var decoded Bundle
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(decoded.Sessions) != 1 || decoded.Sessions[0].ID != "6ba7b810-9dad-11d1-80b4-00c04fd430c8" {
		t.Errorf("sessions = %+v", decoded.Sessions)
	}
	if decoded.Range.StartDate != "2026-08-01" {
		t.Errorf("range = %+v", decoded.Range)
	}
}

func TestWriteCSVSections(t *testing.T) {
	dir := t.TempDir()
	path, err := Write(dir, "csv", testBundle())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	r := csv.NewReader(strings.NewReader(string(data)))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}

	if rows[0][0] != "session_id" {
		t.Errorf("first header = %v", rows[0])
	}
	if rows[1][7] != "deep;refactor" {
		t.Errorf("tags cell = %q", rows[1][7])
	}

	var sawTags, sawStats bool
	for _, row := range rows {
		switch row[0] {
		case "tag_id":
			sawTags = true
		case "date":
			sawStats = true
		}
	}
	if !sawTags || !sawStats {
		t.Errorf("missing sections: tags=%v stats=%v", sawTags, sawStats)
	}
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	if _, err := Write(t.TempDir(), "xlsx", testBundle()); err == nil {
		t.Fatal("unknown format accepted")
	}
}

func TestFileNameEmbedsRange(t *testing.T) {
	name := FileName("json", track.TimeRange{StartDate: "2026-08-01", EndDate: "2026-08-31"})
	if !strings.HasPrefix(name, "tally-export-2026-08-01-to-2026-08-31-") {
		t.Errorf("name = %q", name)
	}
	if !strings.HasSuffix(name, ".json") {
		t.Errorf("name = %q", name)
	}
}

func TestEncryptFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path, err := Write(dir, "json", testBundle())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read plaintext: %v", err)
	}

	encPath, err := EncryptFile(path, "hunter2")
	if err != nil {
		t.Fatalf("EncryptFile: %v", err)
	}
	if !strings.HasSuffix(encPath, ".enc") {
		t.Errorf("encPath = %q", encPath)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("plaintext file still present after encryption")
	}

	plaintext, err := DecryptFile(encPath, "hunter2")
	if err != nil {
		t.Fatalf("DecryptFile: %v", err)
	}
	if string(plaintext) != string(original) {
		t.Error("decrypted bytes differ from original export")
	}

	if _, err := DecryptFile(encPath, "wrong password"); err == nil {
		t.Fatal("wrong password decrypted successfully")
	}
}
