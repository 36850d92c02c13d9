package dataset

import "github.com/spacesedan/impactwatch/internal/models"

// Catalog holds the hand-written example sentences for each category.
var Catalog = []models.LabeledExample{
	// job loss, the economy
	{Text: "I am afraid AI will replace my job next year.", Label: models.EconomicAnxiety},
	{Text: "The economy is crashing because of automation.", Label: models.EconomicAnxiety},
	{Text: "ChatGPT is making writers obsolete, this is sad.", Label: models.EconomicAnxiety},
	{Text: "Layoffs are coming because of new AI tools.", Label: models.EconomicAnxiety},
	{Text: "I don't know how to survive in this AI economy.", Label: models.EconomicAnxiety},

	// privacy, deepfakes, bias
	{Text: "Deepfakes are going to ruin the election.", Label: models.EthicalConcern},
	{Text: "I don't trust AI with my private medical data.", Label: models.EthicalConcern},
	{Text: "Surveillance in this city is getting out of hand with facial recognition.", Label: models.EthicalConcern},
	{Text: "Who is controlling these algorithms? It's biased.", Label: models.EthicalConcern},
	{Text: "AI bias is real and it is discriminating against minorities.", Label: models.EthicalConcern},

	// health, efficiency
	{Text: "AI just helped cure a rare disease, amazing!", Label: models.Optimism},
	{Text: "My productivity has doubled thanks to Copilot.", Label: models.Optimism},
	{Text: "I love how AI handles the boring tasks for me.", Label: models.Optimism},
	{Text: "The future of education is bright with personalized AI tutors.", Label: models.Optimism},
	{Text: "Automation will give us more free time to be creative.", Label: models.Optimism},
}
