package bundle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyinlola/complyscore/pkg/interfaces"
)

const validBundle = `
version: "1"
organization: Acme Payments
weights:
  - category: Risk Assessment
    weight: 0.5
  - category: KYC and AML Procedures
    weight: 0.5
sections:
  - title: Risk
    category: Risk Assessment
    questions:
      - id: q-risk
        text: Is an enterprise risk assessment performed annually?
  - title: CDD
    category: KYC and AML Procedures
    questions:
      - id: q-kyc
        text: Is customer identity verified before onboarding?
        keywords: [identity, verification, onboarding]
documents:
  - title: AML Policy
    kind: policy
    text: Customer identity is verified at onboarding.
  - title: GRC Export
    kind: export
    results:
      - question_id: q-risk
        answer: Annual ERA completed in Q1
        score: 90
        confidence: 0.95
answers:
  - question_id: q-kyc
    text: Yes, for all customers.
`

func writeBundle(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundle.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ValidBundle(t *testing.T) {
	b, err := Load(writeBundle(t, validBundle))
	require.NoError(t, err)

	assert.Equal(t, "Acme Payments", b.Organization)

	weightSet := b.WeightSet()
	require.Len(t, weightSet, 2)
	assert.Equal(t, "Risk Assessment", weightSet[0].Key)

	questions := b.Questions()
	require.Len(t, questions, 2)
	assert.Equal(t, "KYC and AML Procedures", questions[1].Category, "question inherits section category")
	assert.Equal(t, "CDD", questions[1].Section)

	evidence := b.Evidence()
	require.Len(t, evidence, 3)
	assert.Equal(t, interfaces.SourceUploadedDocument, evidence[0].Source)
	assert.Equal(t, interfaces.SourceAIExtracted, evidence[1].Source)
	require.Len(t, evidence[1].Results, 1)
	assert.Equal(t, interfaces.SourceManualAnswer, evidence[2].Source)
	assert.Equal(t, "q-kyc", evidence[2].QuestionID)
}

func TestLoad_DocumentFromPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "policy.txt"), []byte("Sanctions screening is performed daily."), 0o644))

	content := `
organization: Acme
weights:
  - category: Sanctions Screening
    weight: 1.0
sections:
  - title: Screening
    category: Sanctions Screening
    questions:
      - id: q-1
        text: Are counterparties screened?
documents:
  - title: Screening SOP
    path: policy.txt
`
	path := filepath.Join(dir, "bundle.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	b, err := Load(path)
	require.NoError(t, err)
	require.Len(t, b.Documents, 1)
	assert.Contains(t, b.Documents[0].Text, "Sanctions screening")
	assert.Equal(t, "policy", b.Documents[0].Kind, "kind defaults to policy")
}

func TestLoad_MissingOrganization(t *testing.T) {
	content := `
weights:
  - category: A
    weight: 1.0
sections:
  - title: S
    questions:
      - id: q-1
        text: Question?
`
	_, err := Load(writeBundle(t, content))
	assert.Error(t, err)
}

func TestLoad_DuplicateQuestionID(t *testing.T) {
	content := `
organization: Acme
weights:
  - category: A
    weight: 1.0
sections:
  - title: S
    category: A
    questions:
      - id: q-1
        text: First?
      - id: q-1
        text: Second?
`
	_, err := Load(writeBundle(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate question ID")
}

func TestLoad_AnswerForUnknownQuestion(t *testing.T) {
	content := `
organization: Acme
weights:
  - category: A
    weight: 1.0
sections:
  - title: S
    category: A
    questions:
      - id: q-1
        text: Question?
answers:
  - question_id: q-ghost
    text: Yes.
`
	_, err := Load(writeBundle(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown question")
}

func TestLoad_ExportWithoutResults(t *testing.T) {
	content := `
organization: Acme
weights:
  - category: A
    weight: 1.0
sections:
  - title: S
    category: A
    questions:
      - id: q-1
        text: Question?
documents:
  - title: Empty Export
    kind: export
`
	_, err := Load(writeBundle(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declares no results")
}

func TestLoad_PolicyWithoutTextOrPath(t *testing.T) {
	content := `
organization: Acme
weights:
  - category: A
    weight: 1.0
sections:
  - title: S
    category: A
    questions:
      - id: q-1
        text: Question?
documents:
  - title: Ghost Policy
    kind: policy
`
	_, err := Load(writeBundle(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither text nor path")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}
