package prompts

const classifySpec = `Respond with a JSON object matching this exact structure:

{
  "is_healthcare": false,
  "confidence": 0.0,
  "reasoning": "<explanation>"
}

Field constraints:
- is_healthcare: true only when healthcare delivery is part of what happened.
- confidence: number between 0 and 1.
- reasoning: one or two sentences.

Always respond with valid JSON, no markdown fencing.`

const extractSpec = `Respond with a JSON object matching this exact structure:

{
  "summary": "<brief summary of the incident>",
  "incident_date": "<date if mentioned>",
  "location": "<location if mentioned>",
  "parties_involved": ["<party>"],
  "sequence_of_events": ["<event>"],
  "coroner_recommendations": ["<recommendation>"],
  "healthcare_context": {"settings": ["<setting>"], "specialties": ["<specialty>"]}
}

Field constraints:
- sequence_of_events: in chronological order.
- Omit incident_date and location when the document does not state them.

Always respond with valid JSON, no markdown fencing.`

const humanFactorsSpec = `Respond with a JSON object matching this exact structure:

{
  "individual_factors": [{"factor": "", "description": "", "severity": "high|medium|low", "evidence": ""}],
  "team_factors": [],
  "task_factors": [],
  "technology_factors": [],
  "environment_factors": [],
  "organisational_factors": [],
  "latent_hazards": [{"hazard": "", "domain": "", "potential_for_future_harm": "", "detectability": "", "severity": "high|medium|low"}],
  "improvement_opportunities": [{"recommendation": "", "target_domain": "", "implementation_level": "", "priority": "high|medium|low"}]
}

Field constraints:
- Domains are individual, team, task, technology, environment, organisational.
- severity and priority are exactly one of high, medium, low.
- Leave a domain's list empty when the report gives no evidence for it.

Always respond with valid JSON, no markdown fencing.`

const draftSpec = `Respond with a JSON object matching this exact structure:

{
  "title": "<engaging, professional title>",
  "content_markdown": "<full post in markdown>",
  "excerpt": "<2-3 sentence preview>",
  "key_learnings": ["<learning>"],
  "tags": ["<tag>"]
}

Field constraints:
- key_learnings: 3 to 5 items.
- tags: short lowercase topics.

Always respond with valid JSON, no markdown fencing.`
