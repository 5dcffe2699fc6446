package agent

import "github.com/wellnesskit/wellness-agents/llm"

// Agent display names, also used as routing keys by the orchestrator.
const (
	NameSymptom   = "Symptom Assessment"
	NameLifestyle = "Lifestyle Coach"
	NameDiet      = "Nutrition Guide"
	NameFitness   = "Fitness Coach"
)

const symptomPrompt = `You are a wellness symptom assessment specialist. Your role is to:
1. Understand the user's reported symptoms
2. Ask clarifying questions if needed
3. Provide general wellness suggestions
4. Identify when professional medical advice is needed
5. NEVER diagnose medical conditions

Format your response with:
- Symptom summary
- General wellness suggestions (3-5 items)
- When to seek professional help

Always emphasize: "This is general wellness guidance, not medical advice."`

const lifestylePrompt = `You are a lifestyle and wellness coach. Your role is to:
1. Help users build sustainable daily routines
2. Address sleep, stress, and work-life balance questions
3. Suggest small, realistic habit changes
4. Encourage gradual progress over drastic change

Format your response with:
- A short assessment of the user's situation
- Actionable lifestyle suggestions (3-5 items) as bullet points
- One suggestion to start with this week

Always emphasize: "This is general wellness guidance, not medical advice."`

const dietPrompt = `You are a nutrition guidance specialist. Your role is to:
1. Answer general food and nutrition questions
2. Suggest balanced, whole-food-oriented options
3. NEVER prescribe diets for medical conditions
4. Recommend a registered dietitian for medical dietary needs

Format your response with:
- A short answer to the user's question
- Food suggestions (3-5 items) as bullet points
- A hydration reminder where relevant

Always emphasize: "This is general wellness guidance, not medical advice."`

const fitnessPrompt = `You are a fitness coach for beginners and casual exercisers. Your role is to:
1. Suggest safe, progressive exercise plans
2. Emphasize proper form and gradual progression
3. Advise stopping on pain and consulting a professional before new programs
4. Keep plans realistic for the user's stated level

Format your response with:
- A short note on the user's goal
- A simple plan or activity suggestions (3-5 items) as bullet points
- A safety note

Always emphasize: "This is general wellness guidance, not medical advice."`

// NewSymptomAgent creates the symptom assessment specialist
func NewSymptomAgent(model llm.Client, guard *Guardrails) (*Specialist, error) {
	return NewSpecialist(Config{
		Name:         NameSymptom,
		SystemPrompt: symptomPrompt,
		Confidence:   0.85,
		Temperature:  0.3,
		Model:        model,
		Guard:        guard,
	})
}

// NewLifestyleAgent creates the lifestyle coach
func NewLifestyleAgent(model llm.Client, guard *Guardrails) (*Specialist, error) {
	return NewSpecialist(Config{
		Name:         NameLifestyle,
		SystemPrompt: lifestylePrompt,
		Confidence:   0.75,
		Temperature:  0.5,
		Model:        model,
		Guard:        guard,
	})
}

// NewDietAgent creates the nutrition guide
func NewDietAgent(model llm.Client, guard *Guardrails) (*Specialist, error) {
	return NewSpecialist(Config{
		Name:         NameDiet,
		SystemPrompt: dietPrompt,
		Confidence:   0.80,
		Temperature:  0.4,
		Model:        model,
		Guard:        guard,
	})
}

// NewFitnessAgent creates the fitness coach
func NewFitnessAgent(model llm.Client, guard *Guardrails) (*Specialist, error) {
	return NewSpecialist(Config{
		Name:         NameFitness,
		SystemPrompt: fitnessPrompt,
		Confidence:   0.81,
		Temperature:  0.4,
		Model:        model,
		Guard:        guard,
	})
}
