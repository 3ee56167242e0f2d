package prompt

import "strings"

// SystemInstruction frames the model when the provider supports a separate
// instruction channel.
const SystemInstruction = "You are an expert career counselor and CV reviewer. You answer with a single JSON object."

// SchemaContract is appended to every prompt unchanged. The response parser
// relies on the model honouring it.
const SchemaContract = `
IMPORTANT: Respond with a single VALID JSON object ONLY (no extra commentary).
The JSON object must match this schema:

{
  "summary": "<overall CV analysis summary>",
  "recommendations": [
    { "title": "<recommendation title>", "page_content": "<detailed recommendation>" }
  ]
}

Return only the JSON object and nothing else.
`

// Compose builds the analysis prompt for a CV and the user's stated interests.
func Compose(cvText, interests string) string {
	var b strings.Builder
	b.Grow(len(cvText) + len(interests) + len(SchemaContract) + 1024)

	b.WriteString(`
You are an expert career counselor and CV reviewer. Analyze this CV/resume and the user's interests, then respond strictly in JSON as described below.

CV Content:
`)
	b.WriteString(cvText)
	b.WriteString("\n\nUser Interests: ")
	b.WriteString(interests)
	b.WriteString(`

Instructions:
- Provide a concise but comprehensive overall analysis in the "summary" field.
- Provide 3-4 actionable recommendations in the "recommendations" array. Each recommendation must have:
    - "title": short label of the recommendation (e.g., "Improve LinkedIn Profile")
    - "page_content": detailed advice, bullet points, or steps.
- Include advice on skills, experience, career paths, CV improvement, and an action plan inside summary or each recommendation as appropriate.
- Be encouraging and constructive.
- Base all reasoning only on the provided text. Do not make up experience that is not mentioned.
- Do NOT include any text outside the JSON object.

`)
	b.WriteString(SchemaContract)
	return b.String()
}
