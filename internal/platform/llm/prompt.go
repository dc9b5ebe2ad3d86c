package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/medlens/medlens/internal/domain/report"
)

// buildExtractionPrompt produces the extraction instruction. The model must
// answer with strict JSON matching report.Extraction; anything else is
// rejected by the caller.
func buildExtractionPrompt(text string) string {
	var b strings.Builder
	b.WriteString(`You are a medical data extraction assistant.
Analyze the medical report and extract every test mentioned.

Instructions:
1. Identify each medical test.
2. For each test, extract its value, unit, and status (e.g., Low, High, Normal).
3. Correct obvious OCR typos (e.g., "Hemglobin" -> "Hemoglobin", "Hgh" -> "High").
4. Provide a confidence score between 0.0 and 1.0 for the overall extraction.
5. Return ONLY a JSON object. No text or explanations outside the JSON.

Example input:
"CBC: Hemglobin 10.2 g/dL (Low), WBC 11200 /uL (Hgh)"

Expected JSON output:
{
  "tests_raw": [
    {"name": "Hemoglobin", "value": 10.2, "unit": "g/dL", "status": "Low"},
    {"name": "WBC", "value": 11200, "unit": "/uL", "status": "High"}
  ],
  "confidence": 0.95
}
`)
	if strings.TrimSpace(text) != "" {
		fmt.Fprintf(&b, "\nMedical report text to analyze:\n%q\n", text)
	} else {
		b.WriteString("\nThe medical report is attached as an image. Read it and extract the tests.\n")
	}
	b.WriteString("\nJSON output:")
	return b.String()
}

// buildSummaryPrompt produces the summarization instruction for an annotated
// test panel plus optional patient context.
func buildSummaryPrompt(tests []report.TestRecord, patient *report.PatientDetails) (string, error) {
	testsJSON, err := json.MarshalIndent(tests, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode tests for prompt: %w", err)
	}
	detailsJSON := []byte("{}")
	if patient != nil {
		detailsJSON, err = json.MarshalIndent(patient, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode patient details for prompt: %w", err)
		}
	}

	return fmt.Sprintf(`You are an empathetic medical AI assistant. Explain medical test results to a patient in a simple, clear, and reassuring way.

Instructions:
1. Review the patient's details and their latest test results below.
2. The "trend" field indicates whether a value is increasing, decreasing, or stable compared to the last report. This is very important.
3. Generate a concise, easy-to-understand summary.
4. For any abnormal result, provide a simple one-sentence explanation of what the test relates to.
5. Highlight significant changes, especially where a test has worsened or improved.
6. DO NOT provide a diagnosis or medical advice. Use phrases like "This can sometimes indicate..." or "It's often related to...".

Patient details:
%s

Latest test results:
%s

Return ONLY a JSON object with two keys: "summary" (a brief overall summary) and "explanations" (a list of strings with key takeaways).

JSON output:`, detailsJSON, testsJSON), nil
}
