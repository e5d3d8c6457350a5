// ABOUTME: Measurement history operations for Charm KV storage.
// ABOUTME: Uses type-prefixed keys and client-side sorting and filtering.
package charm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harperreed/bmi/internal/models"
	"github.com/harperreed/bmi/internal/storage"
)

const backendCharm = "charm"

var _ storage.Repository = (*Client)(nil)

// SaveAdult stores an adult measurement under adult:<id>.
func (c *Client) SaveAdult(m *models.AdultMeasurement) error {
	data, err := json.Marshal(m)
	if err != nil {
		return models.WrapStorage(backendCharm, "save adult", fmt.Errorf("marshal adult: %w", err))
	}
	return models.WrapStorage(backendCharm, "save adult", c.set(AdultPrefix+m.ID.String(), data))
}

// SaveMinor stores a minor measurement under minor:<id>.
func (c *Client) SaveMinor(m *models.MinorMeasurement) error {
	data, err := json.Marshal(m)
	if err != nil {
		return models.WrapStorage(backendCharm, "save minor", fmt.Errorf("marshal minor: %w", err))
	}
	return models.WrapStorage(backendCharm, "save minor", c.set(MinorPrefix+m.ID.String(), data))
}

// ListAdultHistory returns adult measurements, most recent first.
func (c *Client) ListAdultHistory(limit int) ([]*models.AdultMeasurement, error) {
	all, err := c.listByPrefix(AdultPrefix)
	if err != nil {
		return nil, models.WrapStorage(backendCharm, "list adults", err)
	}

	ms := make([]*models.AdultMeasurement, 0, len(all))
	for _, data := range all {
		m, err := unmarshalJSON[models.AdultMeasurement](data)
		if err != nil {
			continue // Skip invalid entries
		}
		ms = append(ms, m)
	}

	storage.SortAdults(ms)
	return storage.LimitAdults(ms, limit), nil
}

// ListMinorHistory returns minor measurements, most recent first.
func (c *Client) ListMinorHistory(limit int) ([]*models.MinorMeasurement, error) {
	all, err := c.listByPrefix(MinorPrefix)
	if err != nil {
		return nil, models.WrapStorage(backendCharm, "list minors", err)
	}

	ms := make([]*models.MinorMeasurement, 0, len(all))
	for _, data := range all {
		m, err := unmarshalJSON[models.MinorMeasurement](data)
		if err != nil {
			continue // Skip invalid entries
		}
		ms = append(ms, m)
	}

	storage.SortMinors(ms)
	return storage.LimitMinors(ms, limit), nil
}

// ClearAdultHistory deletes every adult key.
func (c *Client) ClearAdultHistory() error {
	return models.WrapStorage(backendCharm, "clear adults", c.deletePrefixes(AdultPrefix))
}

// ClearMinorHistory deletes every minor key.
func (c *Client) ClearMinorHistory() error {
	return models.WrapStorage(backendCharm, "clear minors", c.deletePrefixes(MinorPrefix))
}

// ClearAll deletes both histories with a single sync.
func (c *Client) ClearAll() error {
	return models.WrapStorage(backendCharm, "clear all", c.deletePrefixes(AdultPrefix, MinorPrefix))
}

// DeleteMeasurement removes an adult or minor record by ID or unique prefix.
func (c *Client) DeleteMeasurement(idOrPrefix string) error {
	key, err := c.resolveKey(idOrPrefix)
	if err != nil {
		return models.WrapStorage(backendCharm, "delete measurement", err)
	}
	return models.WrapStorage(backendCharm, "delete measurement", c.deleteKey([]byte(key)))
}

// resolveKey finds the single adult or minor key whose ID matches idOrPrefix.
func (c *Client) resolveKey(idOrPrefix string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var matches []string
	for _, prefix := range []string{AdultPrefix, MinorPrefix} {
		keys, err := c.keysWithPrefix(prefix)
		if err != nil {
			return "", err
		}
		for _, key := range keys {
			if storage.MatchID(strings.TrimPrefix(string(key), prefix), idOrPrefix) {
				matches = append(matches, string(key))
			}
		}
	}

	key, err := storage.PickOne(idOrPrefix, matches)
	if err != nil {
		return "", err
	}
	return key, nil
}

// GetAllData retrieves all data for export.
func (c *Client) GetAllData() (*storage.ExportData, error) {
	return storage.CollectAll(c)
}

// ImportData imports data from an export document.
func (c *Client) ImportData(data *storage.ExportData) error {
	return storage.ImportAll(c, data)
}
