package clinicalai

import (
	"fmt"
	"strings"
)

func validationPrompt(in ValidationInput) string {
	symptoms := strings.TrimSpace(in.Symptoms)
	if symptoms == "" {
		symptoms = "None provided"
	}
	diagnosis := strings.TrimSpace(in.Diagnosis)
	if diagnosis == "" {
		diagnosis = "None provided"
	}
	medicines := strings.TrimSpace(string(in.Medicines))
	if medicines == "" || medicines == "null" {
		medicines = "[]"
	}

	return fmt.Sprintf(`You are a senior medical consultant AI.
Patient Age: %s
Reported Symptoms: %s
Doctor's Diagnosis: %s
Prescribed Medicines: %s

Task: "Analyze the Doctor's Decision"
1. Consistency Check: Do the Symptoms match the Diagnosis?
2. Medicine Suitability: Are these medicines appropriate for the Diagnosis and Symptoms?
3. Safety Check: Are there contraindications for the Patient's Age or between medicines?

Output Format:
- verdict: "Approved" or "Concern Detected"
- analysis: Brief explanation of your findings.
- warnings: List any specific safety warnings.

Keep it concise and professional.`, in.PatientAge, symptoms, diagnosis, medicines)
}

const bloodReportPrompt = `Analyze this blood report document (image or PDF).
Extract key Abnormal Findings.
Provide a "Verdict" for the doctor: Is the patient healthy, or is there a specific concern?
Keep it professional and concise.`

const mriPrompt = `Analyze this MRI scan image.
Task: Identify any visible anomalies (e.g., tumors, fractures, inflammation, or structural abnormalities).

Output Format:
- Findings: List any anomalies found. if none, state "No obvious anomalies detected."
- Impressions: A brief summary of what the image likely shows.
- Disclaimer: Add a standard medical disclaimer that this is AI-generated and not a substitute for a radiologist.

Keep it professional and concise.`

// Canned answers served when the provider is out of quota, so a demo keeps
// working.
const (
	fallbackValidation = "**Outcome: Approved** \n\n**Analysis:**\nThe prescribed medicines appear appropriate for the diagnosed condition. No contraindications found.\n\n**Warnings:**\n- Ensure patient stays hydrated.\n- Monitor for any allergic reactions."

	fallbackBloodReport = "**Blood Report Analysis**\n\n**Findings:**\n- Hemoglobin: Slightly Low (11.5 g/dL)\n- WBC: Normal range\n- Platelets: Normal range\n\n**Verdict:**\nMild Anemia detected. Recommend dietary changes standard iron supplementation."

	fallbackMRI = "**MRI Scan Analysis**\n\n**Findings:**\n- No acute fracture or dislocation seen.\n- Mild soft tissue swelling noted in the lateral aspect.\n\n**Impressions:**\nLikely soft tissue injury. No skeletal anomalies detected.\n\n**Disclaimer:**\nAI-generated analysis. Consult a Radiologist for final diagnosis."
)
