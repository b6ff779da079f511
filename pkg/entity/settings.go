package entity

import (
	"context"

	"github.com/dmitrymomot/mvc/pkg/db"
	"github.com/dmitrymomot/mvc/pkg/query"
)

// Setting is a row of the Settings table.
type Setting struct {
	Property    string
	Value       string
	Description string
	ID          int64
}

// Settings is the Settings table.
type Settings struct {
	Table
}

// NewSettings binds the Settings table to gw.
func NewSettings(gw *db.Gateway) Settings {
	return Settings{Table: NewTable(gw, "Settings")}
}

// ByProperty loads one setting or returns db.ErrNoRows.
func (s Settings) ByProperty(ctx context.Context, property string) (Setting, error) {
	row, err := s.Select().Where("property", property).Limit(0, 1).ExecuteFetch(ctx)
	if err != nil {
		return Setting{}, err
	}
	return settingFromRow(row), nil
}

// ByProperties loads every listed setting that exists, in one query.
func (s Settings) ByProperties(ctx context.Context, properties []string) ([]Setting, error) {
	values := make([]any, len(properties))
	for i, p := range properties {
		values[i] = p
	}

	rows, err := s.Select().WhereIn("property", values).ExecuteFetchAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Setting, len(rows))
	for i, row := range rows {
		out[i] = settingFromRow(row)
	}
	return out, nil
}

// Create inserts a setting and returns it with its id.
func (s Settings) Create(ctx context.Context, setting Setting) (Setting, error) {
	id, err := s.Insert(query.Values{
		{Column: "property", Value: setting.Property},
		{Column: "value", Value: setting.Value},
		{Column: "description", Value: setting.Description},
	}).ExecuteInsertID(ctx)
	if err != nil {
		return Setting{}, err
	}
	setting.ID = id
	return setting, nil
}

// SetValue updates the value of an existing property and reports affected rows.
func (s Settings) SetValue(ctx context.Context, property, value string) (int64, error) {
	return s.Update(query.Values{{Column: "value", Value: value}}).
		Where("property", property).
		Execute(ctx)
}

func settingFromRow(row db.Row) Setting {
	return Setting{
		ID:          row.Int64("id"),
		Property:    row.String("property"),
		Value:       row.String("value"),
		Description: row.String("description"),
	}
}
