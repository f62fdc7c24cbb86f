package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRotatingFileWriter(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "ksearch.log")

	writer, err := NewRotatingFileWriter(logFile, 1024, 3)
	if err != nil {
		t.Fatalf("NewRotatingFileWriter failed: %v", err)
	}
	defer writer.Close()

	if writer.filePath != logFile {
		t.Errorf("FilePath = %q, want %q", writer.filePath, logFile)
	}
	if writer.maxSize != 1024 {
		t.Errorf("MaxSize = %d, want 1024", writer.maxSize)
	}
	if writer.maxBackups != 3 {
		t.Errorf("MaxBackups = %d, want 3", writer.maxBackups)
	}
}

func TestRotatingFileWriter_Write(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "ksearch.log")

	writer, err := NewRotatingFileWriter(logFile, 200, 3)
	if err != nil {
		t.Fatalf("NewRotatingFileWriter failed: %v", err)
	}
	defer writer.Close()

	record := []byte(`{"service":"ksearch","component":"crawl","crawl_id":"r1","msg":"fetch ok"}` + "\n")
	n, err := writer.Write(record)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len(record) {
		t.Errorf("Write returned %d, want %d", n, len(record))
	}

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if string(content) != string(record) {
		t.Errorf("File content = %q, want %q", string(content), string(record))
	}
}

func TestRotatingFileWriter_RotationWritesMarker(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "ksearch.log")

	// Small max size to force rotation on the second write.
	writer, err := NewRotatingFileWriter(logFile, 50, 3)
	if err != nil {
		t.Fatalf("NewRotatingFileWriter failed: %v", err)
	}
	defer writer.Close()

	firstEvent := strings.Repeat("A", 30) + "\n"
	secondEvent := strings.Repeat("B", 30) + "\n"

	if _, err := writer.Write([]byte(firstEvent)); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if _, err := writer.Write([]byte(secondEvent)); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	want := rotationMarker + secondEvent
	if string(content) != want {
		t.Errorf("current segment = %q, want %q (rotation marker followed by new event)", string(content), want)
	}

	files, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("failed to read directory: %v", err)
	}

	backupFound := false
	for _, file := range files {
		if strings.Contains(file.Name(), "ksearch-") && strings.HasSuffix(file.Name(), ".1.log") {
			backupFound = true
			backupContent, err := os.ReadFile(filepath.Join(tmpDir, file.Name()))
			if err != nil {
				t.Fatalf("failed to read backup file: %v", err)
			}
			if string(backupContent) != firstEvent {
				t.Errorf("backup content = %q, want %q", string(backupContent), firstEvent)
			}
			break
		}
	}
	if !backupFound {
		t.Error("expected a .1.log backup segment after rotation")
	}
}

func TestRotatingFileWriter_MaxBackups(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "ksearch.log")

	writer, err := NewRotatingFileWriter(logFile, 20, 2)
	if err != nil {
		t.Fatalf("NewRotatingFileWriter failed: %v", err)
	}
	defer writer.Close()

	for i := 0; i < 5; i++ {
		msg := fmt.Sprintf(`{"seq":%d,"fill":"%s"}`+"\n", i, strings.Repeat("X", 15))
		if _, err := writer.Write([]byte(msg)); err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
	}

	files, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("failed to read directory: %v", err)
	}

	backupCount := 0
	for _, file := range files {
		if strings.Contains(file.Name(), "ksearch-") && strings.Contains(file.Name(), ".log") {
			backupCount++
		}
	}

	if backupCount > 2 {
		t.Errorf("found %d backup segments, expected at most 2", backupCount)
	}
}

func TestRotatingFileWriter_BackupName(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "ksearch.log")

	writer, err := NewRotatingFileWriter(logFile, 1024, 3)
	if err != nil {
		t.Fatalf("NewRotatingFileWriter failed: %v", err)
	}
	defer writer.Close()

	backupName := writer.backupName(1)

	if !strings.Contains(backupName, "ksearch-") {
		t.Errorf("backup name %q doesn't contain base name", backupName)
	}
	if !strings.HasSuffix(backupName, ".1.log") {
		t.Errorf("backup name %q doesn't have correct suffix", backupName)
	}
	if filepath.Dir(backupName) != tmpDir {
		t.Errorf("backup directory = %q, want %q", filepath.Dir(backupName), tmpDir)
	}
}
