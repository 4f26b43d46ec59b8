package pitch

import "fmt"

// Labels and counts for structured generation output.
const (
	// PitchLabel is the marker label wrapped around each pitch.
	PitchLabel = "PITCH"

	// PitchCount is the number of pitches requested per generation.
	PitchCount = 3
)

// pitchSystemPrompt instructs the model to produce three labeled pitches.
const pitchSystemPrompt = `Generate three distinct, concise, and compelling career fair pitches (each 30-60 seconds when spoken) based on the candidate's resume and the job description. Each pitch should:

1. Introduce the candidate and their relevant experience
2. Highlight key skills and achievements
3. Show alignment with the job and company
4. Invite further discussion

Ensure each pitch has a unique approach or emphasizes different aspects of the candidate's background. Wrap each pitch in marker tags: the first pitch between [PITCH1] and [/PITCH1], the second between [PITCH2] and [/PITCH2], and the third between [PITCH3] and [/PITCH3]. Output nothing outside the tags.

Tailor each pitch to the specific resume and job description provided, ensuring they're brief yet impactful.`

// feedbackSystemPrompt turns an emotion summary into delivery feedback.
const feedbackSystemPrompt = `You are a supportive public speaking coach. The user practiced delivering a career fair pitch and their recording was scored for emotional tone. Given the top emotions detected in their voice and face, write a short, encouraging paragraph of feedback on their delivery: what came across well and one or two concrete things to adjust. Address the user directly and do not mention the scoring system.`

// pitchUserContent lays out the resume and job description for the model.
func pitchUserContent(resume, jobDescription string) string {
	return fmt.Sprintf("Resume:\n%s\n\nJob Description:\n%s", resume, jobDescription)
}
