package extract

import "fmt"

// extractionPrompt asks the model for a strict-JSON metadata object.
// The tier vocabulary and negation rules mirror the rule-based classifier.
func extractionPrompt(query string) string {
	return fmt.Sprintf(`You are a query parser for a webtoon recommendation system. Extract metadata from the user's query.

USER QUERY: %q

Extract the following information:

1. "genre": One of: Action, Romance, Fantasy, Drama, Thriller, Horror, Comedy, Supernatural, Sci-Fi, School, Slice of Life. Return null if not specified.

2. "popularity": List of acceptable popularity levels. We have 5 tiers: Hit (top 3%%), VeryPopular, Popular, LessPopular, Unpopular.
   - HIT/MASTERPIECE/LEGENDARY/ABSOLUTE BEST: ["Hit"]
   - VERY POPULAR/EXTREMELY POPULAR: ["VeryPopular", "Hit"]
   - POPULAR/FAMOUS/TRENDING/MAINSTREAM: ["Popular", "VeryPopular"]
   - UNPOPULAR/HIDDEN GEM/UNDERRATED/NOT POPULAR/UNKNOWN/NICHE: ["Unpopular", "LessPopular"]
   - LESS POPULAR: ["LessPopular"]
   Return null if not specified. Pay attention to negations like "NOT popular".

3. "quality_intent": One of "excellent", "good", "unpopular_but_good", "poor", or null.
   "bad quality" means "poor", not "good". "hidden gem" means "unpopular_but_good".

4. "content_keywords": Content-related themes (revenge, overpowered mc, crazy character, ...), or null if the query is only about attributes.

5. "query_type": "attribute" (metadata only), "content" (plot/characters/themes), or "hybrid" (both).

6. "confidence": Float between 0 and 1.

RULES:
- "but" often indicates contrast: "popular but bad" means popular AND poor quality.
- Multiple attributes can combine: "popular action with crazy MC" has all three.

Return ONLY a valid JSON object with these exact keys, no explanation:

{"genre": null, "popularity": null, "quality_intent": null, "content_keywords": null, "query_type": "content", "confidence": 0.0}

Examples:

Query: "popular webtoon"
{"genre": null, "popularity": ["Popular", "VeryPopular"], "quality_intent": null, "content_keywords": null, "query_type": "attribute", "confidence": 0.95}

Query: "masterpiece webtoon"
{"genre": null, "popularity": null, "quality_intent": "excellent", "content_keywords": null, "query_type": "attribute", "confidence": 0.95}

Query: "very popular but bad quality"
{"genre": null, "popularity": ["VeryPopular", "Hit"], "quality_intent": "poor", "content_keywords": null, "query_type": "attribute", "confidence": 0.95}

Query: "webtoon where mc is crazy"
{"genre": null, "popularity": null, "quality_intent": null, "content_keywords": "crazy mc", "query_type": "content", "confidence": 0.9}

Query: "hit action webtoon with overpowered mc"
{"genre": "Action", "popularity": ["Hit"], "quality_intent": null, "content_keywords": "overpowered mc", "query_type": "hybrid", "confidence": 0.9}

Now extract metadata from the user query above. Return ONLY the JSON object:`, query)
}
