package ideas

// Templates use {topic}, {type} and {product} placeholders.

var ideaTemplates = map[string][]string{
	"Marketing Digital": {
		"Complete {topic} Guide for Beginners",
		"Advanced Course: {topic} that Converts",
		"{topic} Masterclass: Secret Strategies",
		"{topic} from Zero: Proven Method",
		"{topic} Automation: Practical Guide",
		"{topic} for E-commerce: Advanced Techniques",
		"Sales Funnel with {topic}: Step by Step",
		"{topic} B2B: Corporate Strategies",
		"{topic} Mobile: Smartphone Era",
		"AI in {topic}: Future of Sales",
	},
	"Investimentos": {
		"{topic}: From Zero to First Million",
		"Investing in {topic}: Safe Guide",
		"{topic} for Beginners: Risk-Free",
		"{topic} Portfolio: Smart Diversification",
		"Advanced {topic}: Pro Strategies",
		"Passive Income with {topic}",
		"{topic}: Fundamental Analysis",
		"International {topic}: Global Markets",
		"{topic} and Taxes: Fiscal Guide",
		"{topic}: Wealth Protection",
	},
	"Fitness": {
		"{topic} Transformation: 90 Days",
		"{topic} at Home: No Gym Required",
		"{topic} for Beginners: First Steps",
		"Advanced {topic}: Next Level",
		"Nutrition and {topic}: Perfect Combination",
		"{topic} for Women: Specific Program",
		"Functional {topic}: Natural Movement",
		"{topic} and Longevity: Lasting Health",
		"Mental {topic}: Mind and Body",
		"Competitive {topic}: Athletic Preparation",
	},
}

var fallbackIdeaTemplates = []string{
	"{topic} Masterclass",
	"{topic}: Practical and Definitive Guide",
	"Secrets of {topic}: Advanced Techniques",
	"Professional {topic}: Exclusive Method",
	"{topic} 360°: Complete Vision",
	"Strategic {topic}: Total Planning",
	"Digital {topic}: Modern Era",
	"Essential {topic}: Solid Foundations",
	"Innovative {topic}: New Approaches",
	"Practical {topic}: Real Results",
}

// ideaVariations are offered once every template title for a topic is taken.
var ideaVariations = []string{
	"{topic} 2.0: New Generation",
	"{topic} Premium: Special Edition",
	"{topic} Masterclass: Updated Version",
	"{topic} Pro: Exclusive Techniques",
	"{topic} Ultimate: Definitive Guide",
}

var trendingTemplates = map[string][]string{
	"Marketing Digital": {
		"{type}s for E-commerce Marketing",
		"Marketing Automation {type}s",
		"Growth Hacking {type}s",
		"Content Marketing {type}s",
		"Advanced SEO {type}s",
		"Instagram Marketing {type}s",
		"Email Marketing {type}s",
		"B2B Marketing {type}s",
	},
	"Investimentos": {
		"Cryptocurrency {type}s",
		"Fixed Income {type}s",
		"Stock Market {type}s",
		"Real Estate Funds {type}s",
		"Day Trading {type}s",
		"Swing Trading {type}s",
		"Technical Analysis {type}s",
		"Financial Education {type}s",
	},
	"Fitness": {
		"Home Workout {type}s",
		"Bodybuilding {type}s",
		"HIIT Cardio {type}s",
		"Yoga {type}s",
		"Pilates {type}s",
		"Crossfit {type}s",
		"Sports Nutrition {type}s",
		"Weight Loss {type}s",
	},
}

var fallbackTrendingTemplates = []string{
	"{topic} {type}s",
	"Advanced {topic} {type}s",
	"Practical {topic} {type}s",
	"Specialized {topic} {type}s",
}

var kitTypes = []string{
	"Complete Kit",
	"Premium Kit",
	"Starter Kit",
	"Advanced Kit",
	"Professional Kit",
	"Ultimate Kit",
	"Essential Kit",
	"Master Kit",
}

var kitComponents = map[string][]string{
	"Marketing Digital": {
		"Professional banners (10 different sizes)",
		"Email sequence (7 ready emails)",
		"Social media posts (15 posts + stories)",
		"Presentation video (script + template)",
		"Optimized landing page (template)",
		"Complete webinar script",
		"Sales arguments (objections and answers)",
		"Support materials (PDFs and infographics)",
	},
}

var fallbackKitComponents = []string{
	"Custom banners for {topic} (8 sizes)",
	"Promotional emails about {topic} (5 sequences)",
	"Social media posts about {topic} (12 posts)",
	"{product} presentation video",
	"Specific sales arguments for {topic}",
	"Optimized landing pages (3 models)",
	"Support materials about {topic}",
	"Affiliate training (video)",
}

var (
	potentials    = []string{"High", "Very High", "Medium"}
	difficulties  = []string{"Easy", "Medium", "Hard"}
	trends        = []string{"+320%", "+278%", "+245%", "+189%", "+156%", "+134%", "+112%", "+98%"}
	competitions  = []string{"Low", "Medium", "High"}
	demands       = []string{"Medium", "High", "Very High"}
	commissions   = []string{"40%", "45%", "50%", "55%", "60%"}
	conversions   = []string{"7.5%", "8.7%", "9.8%", "12.5%", "15.2%"}
	keywordPool   = []string{"course", "guide", "method", "strategy", "technique", "practical", "advanced", "complete"}
	defaultRegion = "Brasil"
)

// span is a [min, max] range in USD.
type span struct{ min, max int }

// revenueRanges are monthly revenue bases per region.
var revenueRanges = map[string]span{
	"Brasil":         {800, 12000},
	"Estados Unidos": {2500, 40000},
	"Europa":         {2000, 32000},
	"América Latina": {600, 10000},
	"Ásia":           {1000, 15000},
}

// priceRanges are product price bands per region.
var priceRanges = map[string]span{
	"Brasil":         {19, 197},
	"Estados Unidos": {49, 497},
	"Europa":         {39, 397},
	"América Latina": {15, 149},
	"Ásia":           {25, 249},
}
