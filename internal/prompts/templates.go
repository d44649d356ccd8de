package prompts

const classifyTemplate = `Analyse the following finding and determine if it is related to healthcare delivery.

Title: {title}

Finding:
{content}`

const extractTemplate = `Extract the incident details from this document.

Document:
{content}`

const humanFactorsTemplate = `Identify the human factors issues in this incident across the six SEIPS domains:
- Individual factors (fatigue, cognitive load, skill, stress)
- Team factors (communication, handover, supervision)
- Task factors (complexity, time pressure, interruptions)
- Technology factors (equipment, usability, documentation)
- Environment factors (physical layout, crowding, resources)
- Organisational factors (staffing, policies, culture)

Also identify latent hazards (hidden system weaknesses) and improvement opportunities (actionable recommendations).

Incident Summary:
{summary}

Content:
{content}`

const draftTemplate = `Write a blog post about this incident that:
1. Has an engaging, professional title
2. Opens with key takeaways in a highlighted box
3. Explains what happened factually
4. Discusses the human factors issues
5. Provides actionable recommendations
6. Uses clear, accessible language

Summary:
{summary}

Human Factors Analysis:
{human_factors}

Key Learnings:
{key_learnings}`

var templates = map[Stage]string{
	StageClassify:     classifyTemplate,
	StageExtract:      extractTemplate,
	StageHumanFactors: humanFactorsTemplate,
	StageDraft:        draftTemplate,
}
