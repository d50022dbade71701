package policy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abbiehooper/PolicyChatbot/internal/storage/models"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("policy not found")

type Service struct {
	root   string
	logger *zap.Logger
}

func NewService(root string, logger *zap.Logger) (*Service, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create policy directory: %w", err)
	}
	return &Service{
		root:   root,
		logger: logger,
	}, nil
}

func (s *Service) InsuranceTypes() []string {
	return s.subdirectories(s.root)
}

func (s *Service) Insurers(insuranceType string) []string {
	return s.subdirectories(filepath.Join(s.root, insuranceType))
}

func (s *Service) Products(insuranceType, insurer string) []models.ProductInfo {
	entries, err := os.ReadDir(filepath.Join(s.root, insuranceType, insurer))
	if err != nil {
		return []models.ProductInfo{}
	}

	products := []models.ProductInfo{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		id := strings.ReplaceAll(insuranceType+"_"+insurer+"_"+name, " ", "_")
		products = append(products, models.ProductInfo{
			ID:   id,
			Name: strings.ReplaceAll(name, "_", " "),
		})
	}
	return products
}

func (s *Service) PDFPath(productID string) (string, error) {
	// Product IDs are InsuranceType_Insurer_ProductName.
	parts := strings.SplitN(productID, "_", 3)
	if len(parts) < 3 {
		s.logger.Warn("Invalid product ID format", zap.String("product_id", productID))
		return "", ErrNotFound
	}

	path := filepath.Join(s.root, parts[0], parts[1], parts[2]+".pdf")
	if _, err := os.Stat(path); err != nil {
		s.logger.Warn("Policy PDF not found",
			zap.String("product_id", productID),
			zap.String("path", path),
		)
		return "", ErrNotFound
	}
	return path, nil
}

func (s *Service) ContentWithPages(productID string) (*models.PolicyContent, error) {
	path, err := s.PDFPath(productID)
	if err != nil {
		return nil, err
	}

	content, err := extractPages(path)
	if err != nil {
		s.logger.Error("Failed to extract policy text",
			zap.String("product_id", productID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to extract policy text: %w", err)
	}
	return content, nil
}

func (s *Service) subdirectories(path string) []string {
	entries, err := os.ReadDir(path)
	if err != nil {
		return []string{}
	}
	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names
}

func extractPages(path string) (*models.PolicyContent, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	var full strings.Builder
	pages := []models.PolicyPage{}
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}

		fmt.Fprintf(&full, "[Page %d]\n%s\n\n", i, text)
		pages = append(pages, models.PolicyPage{
			PageNumber: i,
			Text:       text,
		})
	}

	return &models.PolicyContent{
		FullText: full.String(),
		Pages:    pages,
	}, nil
}
