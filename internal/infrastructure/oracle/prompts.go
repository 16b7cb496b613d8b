package oracle

const classificationPrompt = `You are an expert in analyzing cosmetic ingredients. Classify the following ingredients as natural or synthetic. Return the response as a JSON array of arrays, where each inner array contains the ingredient name and its classification (e.g., [["water", "natural"], ["glycerin", "synthetic"]]).`

const environmentalPrompt = `You are an expert in analyzing the environmental impact of cosmetic ingredients. For each ingredient, provide an analysis of its:
1. Biodegradability (high/medium/low)
2. Toxicity (low/moderate/high)
3. Sustainability (sustainable/moderate/unsustainable)
4. Brief notes explaining the assessment

Return the response as a JSON array of objects with this structure:
[{
  "ingredient": "ingredient name",
  "impact": {
    "biodegradability": "high|medium|low",
    "toxicity": "low|moderate|high",
    "sustainability": "sustainable|moderate|unsustainable",
    "notes": "brief explanation"
  }
}]`
