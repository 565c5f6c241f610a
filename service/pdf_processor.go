package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFProcessor pulls text and page images out of PDF bills and payslips.
type PDFProcessor interface {
	ExtractText(pdfData []byte, password string) (string, error)
	ExtractImages(pdfData []byte, password string) ([]image.Image, error)
}

// pdfcpu names extracted images after the input file.
const pdfBaseName = "doc"

type pdfProcessor struct{}

func NewPDFProcessor() PDFProcessor {
	return &pdfProcessor{}
}

// ExtractText reads the text layer row by row. Encrypted files are decrypted
// with pdfcpu first, since the text reader cannot open them.
func (p *pdfProcessor) ExtractText(pdfData []byte, password string) (string, error) {
	if password != "" {
		decrypted, err := decrypt(pdfData, password)
		if err != nil {
			return "", err
		}
		pdfData = decrypted
	}

	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var sb strings.Builder
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", pageIndex, err)
		}
		for _, row := range rows {
			for i, word := range row.Content {
				if i > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(word.S)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

func decrypt(pdfData []byte, password string) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password

	var out bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(pdfData), &out, conf); err != nil {
		return nil, fmt.Errorf("failed to decrypt pdf: %w", err)
	}
	return out.Bytes(), nil
}

// ExtractImages returns the embedded page images of a scanned PDF in page
// order.
func (p *pdfProcessor) ExtractImages(pdfData []byte, password string) ([]image.Image, error) {
	tempDir, err := os.MkdirTemp("", "pdf-images-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	pdfPath := filepath.Join(tempDir, pdfBaseName+".pdf")
	if err := os.WriteFile(pdfPath, pdfData, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write pdf data: %w", err)
	}
	outDir := filepath.Join(tempDir, "images")
	if err := os.Mkdir(outDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create image dir: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	if password != "" {
		conf.UserPW = password
	}
	if err := api.ExtractImagesFile(pdfPath, outDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image dir: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sortByPage(names, pdfBaseName)

	var images []image.Image
	for _, name := range names {
		f, err := os.Open(filepath.Join(outDir, name))
		if err != nil {
			continue
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			continue
		}
		images = append(images, img)
	}
	return images, nil
}

// sortByPage orders files written by pdfcpu as <base>_<page>_<id>.<ext> by
// page number, then by name. Names without a page number go last.
func sortByPage(names []string, base string) {
	page := func(name string) int {
		rest, ok := strings.CutPrefix(name, base+"_")
		if !ok {
			return math.MaxInt
		}
		digits, _, _ := strings.Cut(rest, "_")
		n, err := strconv.Atoi(digits)
		if err != nil {
			return math.MaxInt
		}
		return n
	}
	sort.SliceStable(names, func(i, j int) bool {
		pi, pj := page(names[i]), page(names[j])
		if pi != pj {
			return pi < pj
		}
		return names[i] < names[j]
	})
}
