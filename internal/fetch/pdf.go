package fetch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const (
	ExtractorLedongthuc = "ledongthuc"
	ExtractorPdfcpu     = "pdfcpu"
)

// Extractor turns PDF bytes into plain text.
type Extractor interface {
	Name() string
	Extract(data []byte) (string, error)
}

var extractors = map[string]func() Extractor{
	ExtractorLedongthuc: func() Extractor { return plainText{} },
	ExtractorPdfcpu:     func() Extractor { return contentStream{} },
}

// Extractors resolves extractor names in order, skipping unknown names.
// It fails with ErrNoExtractor when nothing resolves.
func Extractors(names ...string) ([]Extractor, error) {
	var out []Extractor
	for _, name := range names {
		if ctor, ok := extractors[strings.ToLower(strings.TrimSpace(name))]; ok {
			out = append(out, ctor())
		}
	}
	if len(out) == 0 {
		known := make([]string, 0, len(extractors))
		for name := range extractors {
			known = append(known, name)
		}
		slices.Sort(known)
		return nil, fmt.Errorf("%w: have %v, known %v", ErrNoExtractor, names, known)
	}
	return out, nil
}

// ExtractText runs each extractor until one yields non-empty text.
func ExtractText(chain []Extractor, data []byte) (string, error) {
	if len(chain) == 0 {
		return "", ErrNoExtractor
	}

	var errs []error
	for _, e := range chain {
		text, err := e.Extract(data)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
			continue
		}
		if text = CleanText(text); text != "" {
			return text, nil
		}
		errs = append(errs, fmt.Errorf("%s: no text", e.Name()))
	}
	return "", fmt.Errorf("%w: %w", ErrExtractFailed, errors.Join(errs...))
}

// PageCount returns the number of pages in a PDF.
func PageCount(data []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("%w: page count: %v", ErrExtractFailed, r)
		}
	}()
	return api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
}

type plainText struct{}

func (plainText) Name() string { return ExtractorLedongthuc }

func (plainText) Extract(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	r, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// contentStream reads literal strings shown by text operators in each
// page's content stream.
type contentStream struct{}

func (contentStream) Name() string { return ExtractorPdfcpu }

func (contentStream) Extract(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	ctx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return "", err
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return "", err
	}

	var sb strings.Builder
	for page := 1; page <= ctx.PageCount; page++ {
		r, err := pdfcpu.ExtractPageContent(ctx, page)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", page, err)
		}
		if r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", page, err)
		}
		sb.WriteString(showText(content))
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

// showText collects the literal strings of a content stream, breaking lines
// at text positioning operators.
func showText(content []byte) string {
	var sb strings.Builder

	for i := 0; i < len(content); i++ {
		switch c := content[i]; c {
		case '(':
			s, next := literal(content, i+1)
			sb.WriteString(s)
			i = next
		case 'T':
			if i+1 < len(content) && strings.IndexByte("*dD", content[i+1]) >= 0 {
				sb.WriteByte('\n')
				i++
			}
		case 'E':
			if i+1 < len(content) && content[i+1] == 'T' {
				sb.WriteByte('\n')
				i++
			}
		}
	}
	return sb.String()
}

// literal reads a PDF literal string starting after its opening paren and
// returns the decoded text and the index of the closing paren.
func literal(b []byte, i int) (string, int) {
	var sb strings.Builder
	depth := 1

	for ; i < len(b); i++ {
		c := b[i]
		switch c {
		case '\\':
			if i+1 >= len(b) {
				continue
			}
			i++
			switch e := b[i]; e {
			case 'n':
				sb.WriteByte('\n')
			case 'r', 't':
				sb.WriteByte(' ')
			case '(', ')', '\\':
				sb.WriteByte(e)
			default:
				if e >= '0' && e <= '7' {
					v, n := 0, 0
					for n < 3 && i < len(b) && b[i] >= '0' && b[i] <= '7' {
						v = v*8 + int(b[i]-'0')
						i++
						n++
					}
					i--
					sb.WriteByte(byte(v))
				}
			}
		case '(':
			depth++
			sb.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				return sb.String(), i
			}
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), i
}
