package server

type promoItem struct {
	Icon   string
	Title  string
	Text   string
	Points []string
}

type testimonial struct {
	Initials string
	Name     string
	Role     string
	Quote    string
}

type promoContent struct {
	Roles        []promoItem
	Reasons      []promoItem
	Highlights   []promoItem
	Testimonials []testimonial
}

var promo = &promoContent{
	Roles: []promoItem{
		{Icon: "💻", Title: "Frontend Developer", Text: "React, Vue, Angular, JavaScript, CSS, HTML"},
		{Icon: "⚙️", Title: "Backend Developer", Text: "Node.js, Python, Java, APIs, Databases"},
		{Icon: "🚀", Title: "Full Stack Developer", Text: "End-to-end development, System Design"},
		{Icon: "🔧", Title: "DevOps Engineer", Text: "CI/CD, Docker, Kubernetes, AWS, Azure"},
		{Icon: "📊", Title: "Data Analyst", Text: "SQL, Python, Data Visualization, Statistics"},
		{Icon: "🤖", Title: "And Many More!", Text: "QA, Mobile Dev, Cloud Architect, ML Engineer"},
	},
	Reasons: []promoItem{
		{Title: "1000+ MCQ Questions", Text: "Curated by industry experts"},
		{Title: "Real Interview Scenarios", Text: "Practice like the actual interview"},
		{Title: "Detailed Explanations", Text: "Learn from every question"},
		{Title: "Track Your Progress", Text: "Analytics & performance insights"},
		{Title: "Role-Specific Tests", Text: "Tailored for your career path"},
		{Title: "Timed Practice", Text: "Build speed and confidence"},
	},
	Highlights: []promoItem{
		{
			Icon:  "🤖",
			Title: "AI-Powered Analysis",
			Text:  "Get instant, personalized feedback after every exam with our advanced AI technology:",
			Points: []string{
				"Identify your strengths & weaknesses",
				"Personalized study recommendations",
				"Detailed topic-wise performance breakdown",
				"Compare with top performers",
			},
		},
		{
			Icon:  "🏆",
			Title: "Download Certificates",
			Text:  "Earn professional certificates after completing each exam and showcase your skills:",
			Points: []string{
				"Instant certificate generation",
				"Add to your LinkedIn profile",
				"Share with employers & recruiters",
				"Boost your resume credibility",
			},
		},
	},
	Testimonials: []testimonial{
		{
			Initials: "RS",
			Name:     "Rahul Sharma",
			Role:     "Frontend Developer at Google",
			Quote:    "MockExperts helped me prepare for my Google interview. The AI analysis feature is a game-changer!",
		},
		{
			Initials: "PK",
			Name:     "Priya Kapoor",
			Role:     "Full Stack Developer at Amazon",
			Quote:    "The role-specific tests and detailed explanations made all the difference in my preparation.",
		},
	},
}
