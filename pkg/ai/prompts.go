package ai

// AnalyzeSystemPrompt frames the analysis request.
const AnalyzeSystemPrompt = `You are an expert analyst specializing in extracting structured information from legal documents and court records.`

// AnalyzePrompt asks for entities, relationships and a summary from a
// document excerpt. Takes the excerpt text.
const AnalyzePrompt = `Analyze this document excerpt from an investigative archive.

Extract:
1. People mentioned (names only)
2. Organizations mentioned
3. Locations/Countries mentioned
4. Key relationships between entities
5. A brief summary (2-3 sentences)

Document text:
%s

Respond in JSON format:
{
    "people": ["name1", "name2"],
    "organizations": ["org1"],
    "locations": ["location1"],
    "relationships": [
        {"source": "person1", "target": "person2", "type": "associate", "description": "brief description"}
    ],
    "summary": "Brief summary here"
}`

// NarrativeSystemPrompt frames narrative generation.
const NarrativeSystemPrompt = `You are an investigative journalist writing about archived court documents and the connections they establish.`

// NarrativePrompt asks for a short narrative. Takes the comma-joined entity
// list and the context text.
const NarrativePrompt = `Based on the archived documents, create a concise 2-3 sentence narrative about: %s

Context: %s

The narrative should be factual, based on documented evidence, and highlight key connections or events. Keep it brief and impactful.`

// ConnectionsSystemPrompt frames connection discovery.
const ConnectionsSystemPrompt = `You are an investigative analyst finding connections between individuals and organizations in legal documents.`

// ConnectionsPrompt asks for connections involving one entity. Takes the
// entity name and the joined document excerpts.
const ConnectionsPrompt = `Analyze these document excerpts and identify all connections and relationships involving "%s".

For each connection found, specify:
- Who they're connected to
- The type of relationship (associate, business partner, co-passenger, etc.)
- A brief description of the connection evidence

Documents:
%s

Respond in JSON format:
{
    "connections": [
        {
            "target": "person/org name",
            "type": "relationship type",
            "description": "evidence description"
        }
    ]
}`

// SummarizeSystemPrompt frames country-level summarization.
const SummarizeSystemPrompt = `You are an intelligence analyst summarizing geopolitical connections found in archived documents.`

// SummarizePrompt asks for a country intel summary. Takes the country code
// and the joined document previews.
const SummarizePrompt = `Summarize the intelligence related to %s from these archived documents.

Focus on:
- Key individuals mentioned in connection with this country
- Significant events or activities
- Properties or locations

Keep it to 2-3 sentences.

Documents:
%s`
