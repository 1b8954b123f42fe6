package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"DayTrader/internal/model"
)

// ErrCorrupt is wrapped by LoadLedger when the file exists but cannot be decoded.
var ErrCorrupt = errors.New("ledger file is not valid JSON")

// LoadLedger reads the whole ledger file. Returns an empty ledger if the file doesn't exist.
func LoadLedger(filePath string) (model.Ledger, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Ledger{}, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return model.Ledger{}, nil
	}
	var ledger model.Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if ledger == nil {
		ledger = model.Ledger{}
	}
	return ledger, nil
}

// SaveLedger rewrites the whole ledger file.
func SaveLedger(filePath string, ledger model.Ledger) error {
	data, err := json.MarshalIndent(ledger, "", "    ")
	if err != nil {
		return err
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}

// quarantine copies an undecodable ledger aside so the next save does not lose it.
func quarantine(filePath string, now time.Time) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	dst := fmt.Sprintf("%s.corrupt-%d", filePath, now.Unix())
	return dst, os.WriteFile(dst, data, 0644)
}

func ensureFile(filePath string) error {
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return os.WriteFile(filePath, []byte("{}"), 0644)
	} else if err != nil {
		return err
	}
	return nil
}
