package policy

import (
	"github.com/abbiehooper/PolicyChatbot/internal/storage/models"
)

// PolicyService exposes the policy document catalog. Documents live on disk
// as PolicyDocuments/<InsuranceType>/<Insurer>/<Product>.pdf and are
// addressed by a product ID of the form type_insurer_name.
type PolicyService interface {
	InsuranceTypes() []string
	Insurers(insuranceType string) []string
	Products(insuranceType, insurer string) []models.ProductInfo

	// ContentWithPages extracts the page-numbered text of a policy.
	// Returns ErrNotFound for unknown or malformed product IDs.
	ContentWithPages(productID string) (*models.PolicyContent, error)

	// PDFPath resolves the on-disk path of a policy PDF.
	PDFPath(productID string) (string, error)
}

// Verify interface implementation
var _ PolicyService = (*Service)(nil)
