package vision

import (
	"fmt"
	"strings"
)

// promptTemplate instructs the model to answer with a single JSON object
// matching the response schema. The %s slot carries the optional
// operator-context block.
const promptTemplate = `Analyze these product images and generate a detailed product description in VALID JSON format.

IMPORTANT: You MUST respond with ONLY valid JSON. Do not include any text before or after the JSON.

The JSON should have the following structure:
{
    "category": "Category, e.g. bag, watch, shoe...",
    "sub_category": "Sub-category, e.g., handbag, wallet, etc.",
    "brand": "Brand Name",
    "model": "Model Name",
    "material": "Material Description, e.g., leather, cotton, polyester, etc.",
    "color": "Color Description, e.g., black, white, beige, red, blue, brown, pink",
    "size": "Size Information, provide mini, small, medium, large",
    "height": "Height in inches",
    "width": "Width in inches",
    "depth": "Depth in inches",
    "serial_number": "Serial Number if identifiable",
    "year_of_production": "Year if identifiable",
    "condition_grade": "Condition Percentage",
    "condition_description": "Detailed condition description, include detailed observations about exterior, interior, hardware, etc",
    "accessories": ["List any accessories"],
    "estimated_price_range": "The price range in GBP for good condition product",
    "urls": ["The source urls for the estimated price range"],
    "recommended_selling_price": "Price in GBP"
}
%s
Please be thorough and accurate in your analysis, and ensure all sources for the estimated price range are provided with working URLs. Respond ONLY with the JSON object.`

// BuildPrompt renders the model prompt for one request. The reference
// number and operator hints are embedded as additional context; pricing
// sources must be real URLs, so the template says so explicitly.
func BuildPrompt(req Request) string {
	var context strings.Builder
	context.WriteString(fmt.Sprintf("\nReference number for this product: %s\n", req.ReferenceNumber))
	if hints := strings.TrimSpace(req.Hints); hints != "" {
		context.WriteString("\nADDITIONAL CONTEXT PROVIDED:\n")
		context.WriteString(hints)
		context.WriteString("\n\nPlease use this context to enhance your analysis and provide more accurate details about the product type, condition, and specifications.\n")
	}
	return fmt.Sprintf(promptTemplate, context.String())
}
