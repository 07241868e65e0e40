// Package report renders a completed symptom assessment and its care
// pathways as a downloadable PDF summary.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/signintech/gopdf"

	"github.com/carebow/triage-engine/internal/care"
	"github.com/carebow/triage-engine/internal/triage"
)

type Service struct {
	fontPaths []string
}

func NewService() *Service {
	return &Service{
		// DejaVuSans ships with the runtime image; try the common layouts.
		fontPaths: []string{
			"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		},
	}
}

// Generate renders the assessment report and returns the PDF bytes.
func (s *Service) Generate(assessment *triage.SymptomAssessment, pathways []care.Pathway) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	var fontErr error
	fontLoaded := false
	for _, path := range s.fontPaths {
		if err := pdf.AddTTFFont("DejaVu", path); err == nil {
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return nil, fmt.Errorf("failed to load font for PDF, ensure ttf-dejavu is installed: %w", fontErr)
	}

	if err := pdf.SetFont("DejaVu", "", 20); err != nil {
		return nil, err
	}
	pdf.Cell(nil, "CareBow Health Assessment Report")
	pdf.Br(30)

	if err := pdf.SetFont("DejaVu", "", 12); err != nil {
		return nil, err
	}
	pdf.Cell(nil, fmt.Sprintf("Date: %s", assessment.CreatedAt.Format("02.01.2006 15:04")))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Assessment ID: %s", assessment.ID))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Urgency: %s", strings.ToUpper(assessment.UrgencyClassification.String())))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Confidence: %s", assessment.ConfidenceLevel))
	pdf.Br(25)

	if err := s.section(&pdf, "Reported Symptoms"); err != nil {
		return nil, err
	}
	if err := s.paragraph(&pdf, assessment.SymptomsReported.Primary); err != nil {
		return nil, err
	}

	if err := s.section(&pdf, "Possible Conditions"); err != nil {
		return nil, err
	}
	if len(assessment.DifferentialDiagnoses) == 0 {
		if err := s.paragraph(&pdf, "- No conditions identified."); err != nil {
			return nil, err
		}
	}
	for _, d := range assessment.DifferentialDiagnoses {
		line := fmt.Sprintf("- %s (%d%%): %s", d.Condition, d.Probability, d.Description)
		if err := s.paragraph(&pdf, line); err != nil {
			return nil, err
		}
	}

	if len(assessment.RedFlags) > 0 {
		if err := s.section(&pdf, "Warning Signs"); err != nil {
			return nil, err
		}
		for _, flag := range assessment.RedFlags {
			if err := s.paragraph(&pdf, "- "+flag); err != nil {
				return nil, err
			}
		}
	}

	if len(pathways) > 0 {
		if err := s.section(&pdf, "Recommended Care Options"); err != nil {
			return nil, err
		}
		for i, p := range pathways {
			line := fmt.Sprintf("%d. %s: wait %s, cost %s. %s",
				i+1, strings.ReplaceAll(p.PathwayType, "_", " "),
				p.EstimatedWaitTime, p.CostEstimate, p.Notes)
			if err := s.paragraph(&pdf, line); err != nil {
				return nil, err
			}
		}
	}

	pdf.SetY(800)
	if err := pdf.SetFont("DejaVu", "", 9); err != nil {
		return nil, err
	}
	pdf.Cell(nil, fmt.Sprintf("Generated %s. Not a medical diagnosis; consult a licensed provider.",
		time.Now().Format("2006-01-02")))

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Service) section(pdf *gopdf.GoPdf, title string) error {
	if err := pdf.SetFont("DejaVu", "", 14); err != nil {
		return err
	}
	pdf.Cell(nil, title)
	pdf.Br(15)
	return pdf.SetFont("DejaVu", "", 11)
}

func (s *Service) paragraph(pdf *gopdf.GoPdf, text string) error {
	lines, _ := pdf.SplitText(text, 500)
	for _, l := range lines {
		pdf.Cell(nil, l)
		pdf.Br(12)
	}
	pdf.Br(5)
	return nil
}
