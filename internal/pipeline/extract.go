package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	"github.com/xuri/excelize/v2"

	"recipediff/internal/util"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrEmptyWorkbook     = errors.New("workbook has no sheets")
	ErrNoTable           = errors.New("document has no table")
)

// Attachment is a named workbook lifted out of a mail message.
type Attachment struct {
	Name    string
	Content []byte
}

// ReadSheet decodes the first worksheet of a workbook. The format is chosen
// from the file name's extension.
func ReadSheet(name string, content []byte) (Sheet, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return parseXLSX(content)
	case ".html", ".htm":
		return parseHTMLTable(content)
	case ".xls":
		// Several ERP exports write an HTML table under an .xls name.
		if looksLikeHTML(content) {
			return parseHTMLTable(content)
		}
		return nil, fmt.Errorf("%w: binary .xls (%s), save it as .xlsx", ErrUnsupportedFormat, name)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

func IsWorkbookName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xls", ".html", ".htm":
		return true
	}
	return false
}

func parseXLSX(content []byte) (Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	return Sheet(rows), nil
}

func parseHTMLTable(content []byte) (Sheet, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	out := Sheet{}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := []string{}
		row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, util.NormalizeSpaces(cell.Text()))
		})
		out = append(out, cells)
	})
	return out, nil
}

func looksLikeHTML(content []byte) bool {
	head := content
	if len(head) > 512 {
		head = head[:512]
	}
	lower := bytes.ToLower(bytes.TrimSpace(head))
	return bytes.Contains(lower, []byte("<html")) || bytes.Contains(lower, []byte("<table")) || bytes.HasPrefix(lower, []byte("<!doctype"))
}

// ReadEmailAttachments returns the workbook attachments of a raw RFC 822
// message in the order they appear.
func ReadEmailAttachments(raw []byte) (string, []Attachment, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return "", nil, err
	}

	out := []Attachment{}
	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if !IsWorkbookName(filename) {
			continue
		}
		out = append(out, Attachment{Name: filename, Content: att.Content})
	}
	return env.GetHeader("Subject"), out, nil
}
