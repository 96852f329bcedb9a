package gateway

import "github.com/bnema/growth-dashboard/internal/ports"

type prompt struct {
	system string
	// user is a format string taking the JSON payload.
	user string
}

var prompts = map[ports.InsightKind]prompt{
	ports.InsightBooks: {
		system: "You are a thoughtful book recommendation assistant. Analyze reading patterns and suggest books that match the user's interests and reading level.",
		user: `Based on this reading history: %s
      
Provide 3 personalized book recommendations with:
1. Title and Author
2. Why it matches their interests (reference specific books they've read)
3. Estimated difficulty level

Also provide a brief insight about their reading patterns (genres they prefer, completion rate, etc.)`,
	},
	ports.InsightCareer: {
		system: "You are a career coach analyzing job application patterns. Provide strategic advice.",
		user: `Based on these job applications: %s
      
Provide:
1. Analysis of application patterns (industries, roles, success rate)
2. 3 specific actionable tips to improve job search
3. Suggested skills to highlight based on the positions they're targeting

Keep advice practical and encouraging.`,
	},
	ports.InsightVocabulary: {
		system: "You are a language learning coach. Analyze vocabulary progress and suggest effective learning strategies.",
		user: `Based on this vocabulary data: %s
      
Provide:
1. Analysis of learning progress (mastery levels, language focus)
2. 3 new vocabulary words that naturally build on what they know
3. A quick learning tip or technique to improve retention

Make suggestions specific to the language(s) they're studying.`,
	},
	ports.InsightOverview: {
		system: "You are a personal growth coach. Analyze overall progress and provide motivational insights.",
		user: `Based on this complete dashboard data: %s
      
Provide:
1. Celebration of achievements (be specific!)
2. Pattern insights across all areas (reading, career, language)
3. One powerful suggestion to maximize growth
4. Motivational closing thought

Keep the tone warm, encouraging, and actionable.`,
	},
}
