package sheets

import (
	"bytes"
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const (
	spreadsheetMIME = "application/vnd.google-apps.spreadsheet"
	folderMIME      = "application/vnd.google-apps.folder"
)

// GoogleClient implements Client and DriveClient against the Google
// Sheets and Drive APIs. All calls are blocking; transient transport
// failures surface to the caller, who may retry the whole merge.
type GoogleClient struct {
	sheets *sheetsapi.Service
	drive  *drive.Service
}

// NewGoogleClient builds a client authenticated from a service-account
// credentials file.
func NewGoogleClient(ctx context.Context, credentialsFile string) (*GoogleClient, error) {
	sheetsSvc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsScope, drive.DriveScope))
	if err != nil {
		return nil, fmt.Errorf("init sheets service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveScope))
	if err != nil {
		return nil, fmt.Errorf("init drive service: %w", err)
	}
	return &GoogleClient{sheets: sheetsSvc, drive: driveSvc}, nil
}

// EnsureSpreadsheet finds the named spreadsheet via a Drive name query,
// creating it when absent.
func (c *GoogleClient) EnsureSpreadsheet(ctx context.Context, name string) (SpreadsheetRef, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escapeQuery(name), spreadsheetMIME)
	list, err := c.drive.Files.List().Q(q).Spaces("drive").Fields("files(id, name)").Context(ctx).Do()
	if err != nil {
		return SpreadsheetRef{}, fmt.Errorf("search spreadsheet: %w", err)
	}
	if len(list.Files) > 0 {
		id := list.Files[0].Id
		return SpreadsheetRef{ID: id, URL: spreadsheetURL(id)}, nil
	}

	created, err := c.sheets.Spreadsheets.Create(&sheetsapi.Spreadsheet{
		Properties: &sheetsapi.SpreadsheetProperties{Title: name},
	}).Context(ctx).Do()
	if err != nil {
		return SpreadsheetRef{}, fmt.Errorf("create spreadsheet: %w", err)
	}
	return SpreadsheetRef{ID: created.SpreadsheetId, URL: created.SpreadsheetUrl}, nil
}

// EnsureWorksheet adds the named tab when the spreadsheet lacks it.
func (c *GoogleClient) EnsureWorksheet(ctx context.Context, ref SpreadsheetRef, title string) error {
	ss, err := c.sheets.Spreadsheets.Get(ref.ID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return nil
		}
	}

	_, err = c.sheets.Spreadsheets.BatchUpdate(ref.ID, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: title},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add worksheet: %w", err)
	}
	return nil
}

// ReadRows fetches the worksheet contents, header included.
func (c *GoogleClient) ReadRows(ctx context.Context, ref SpreadsheetRef, title string) ([][]string, error) {
	vr, err := c.sheets.Spreadsheets.Values.Get(ref.ID, title).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read worksheet: %w", err)
	}
	if len(vr.Values) == 0 {
		return nil, nil
	}
	rows := make([][]string, len(vr.Values))
	for i, raw := range vr.Values {
		row := make([]string, len(raw))
		for j, cell := range raw {
			row[j] = fmt.Sprint(cell)
		}
		rows[i] = row
	}
	return rows, nil
}

// AppendRows writes rows after the last existing row in a single batch.
func (c *GoogleClient) AppendRows(ctx context.Context, ref SpreadsheetRef, title string, rows [][]string) error {
	values := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		values[i] = cells
	}

	_, err := c.sheets.Spreadsheets.Values.Append(ref.ID, title, &sheetsapi.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to worksheet: %w", err)
	}
	return nil
}

// Clear removes all values from the worksheet.
func (c *GoogleClient) Clear(ctx context.Context, ref SpreadsheetRef, title string) error {
	_, err := c.sheets.Spreadsheets.Values.Clear(ref.ID, title, &sheetsapi.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear worksheet: %w", err)
	}
	return nil
}

// EnsureFolder resolves a Drive folder by name under parentID, creating
// it when absent.
func (c *GoogleClient) EnsureFolder(ctx context.Context, name, parentID string) (string, error) {
	parent := parentID
	if parent == "" {
		parent = "root"
	}
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and '%s' in parents and trashed = false",
		escapeQuery(name), folderMIME, parent)
	list, err := c.drive.Files.List().Q(q).Spaces("drive").Fields("files(id)").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("search folder: %w", err)
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}

	meta := &drive.File{Name: name, MimeType: folderMIME}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}
	created, err := c.drive.Files.Create(meta).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}
	return created.Id, nil
}

// UploadFile uploads data into folderID under the given name.
func (c *GoogleClient) UploadFile(ctx context.Context, folderID, name string, data []byte) (string, error) {
	meta := &drive.File{Name: name, Parents: []string{folderID}}
	created, err := c.drive.Files.Create(meta).
		Media(bytes.NewReader(data)).
		Fields("id").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("upload file %q: %w", name, err)
	}
	return created.Id, nil
}

func spreadsheetURL(id string) string {
	return "https://docs.google.com/spreadsheets/d/" + id
}

// escapeQuery escapes single quotes for Drive query strings.
func escapeQuery(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
