package handlers

import (
	"errors"
	"net/http"

	"github.com/abbiehooper/PolicyChatbot/internal/service/policy"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PolicyHandler struct {
	policyService policy.PolicyService
	logger        *zap.Logger
}

func NewPolicyHandler(policyService policy.PolicyService, logger *zap.Logger) *PolicyHandler {
	return &PolicyHandler{
		policyService: policyService,
		logger:        logger,
	}
}

// GET /policies/insurance-types
func (h *PolicyHandler) GetInsuranceTypes(c *gin.Context) {
	c.JSON(http.StatusOK, h.policyService.InsuranceTypes())
}

// GET /policies/insurers?insurance_type=Car
func (h *PolicyHandler) GetInsurers(c *gin.Context) {
	insuranceType := c.Query("insurance_type")
	if insuranceType == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "insurance_type is required",
			Code:  "MISSING_INSURANCE_TYPE",
		})
		return
	}

	c.JSON(http.StatusOK, h.policyService.Insurers(insuranceType))
}

// GET /policies/products?insurance_type=Car&insurer=Acme
func (h *PolicyHandler) GetProducts(c *gin.Context) {
	insuranceType := c.Query("insurance_type")
	insurer := c.Query("insurer")
	if insuranceType == "" || insurer == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "insurance_type and insurer are required",
			Code:  "MISSING_QUERY_PARAMS",
		})
		return
	}

	c.JSON(http.StatusOK, h.policyService.Products(insuranceType, insurer))
}

// GET /policies/pdf/:product_id - serve the raw policy PDF
func (h *PolicyHandler) GetPDF(c *gin.Context) {
	productID := c.Param("product_id")

	path, err := h.policyService.PDFPath(productID)
	if err != nil {
		if errors.Is(err, policy.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "PDF not found",
				Code:  "PDF_NOT_FOUND",
			})
			return
		}
		h.logger.Error("Failed to resolve PDF path",
			zap.Error(err),
			zap.String("product_id", productID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to load PDF",
			Code:  "PDF_ERROR",
		})
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.File(path)
}
