package models

// Metadata keys written to the vector store next to every chunk.
const (
	MetaSource        = "source"
	MetaSourceType    = "source_type"
	MetaAccessTier    = "access_tier"
	MetaTimePartition = "time_partition"
	MetaRow           = "row"
)

// HeadingKeys are the metadata keys of the heading chain, level 1 first.
var HeadingKeys = [MaxHeadingLevel]string{"h1", "h2", "h3", "h4"}

// MaxHeadingLevel caps the heading chain. Deeper headings are folded into it.
const MaxHeadingLevel = 4

const (
	FilenameQuarterRegex = `(?i)_q([1-4])_`
	HeadingQuarterRegex  = `(?i)q([1-4])`

	BreadcrumbSeparator = " > "
	LocationSeparator   = ", "
	ContextSeparator    = "\n\n"
	MissingValue        = "-"

	// NoInformation is returned in place of an answer whenever the
	// authorized context cannot answer the question.
	NoInformation = "There is no information"
)

var (
	// ContextFields are the metadata fields surfaced in every source block.
	ContextFields = []string{"salary", "employee_id", "role"}

	SystemPrompt = "Answer ONLY using the provided context.\n" +
		"If the context does not contain the answer, respond exactly with: '" + NoInformation + "'.\n\n" +
		"Response format:\n" +
		"Short answer\n" +
		"Optional explanation (only if needed)\n" +
		"Sources: source_path, location\n\n" +
		"Rules:\n" +
		"- Do NOT use external knowledge.\n" +
		"- Do NOT invent or guess sources.\n" +
		"- Use only sources explicitly present in the context.\n"

	UserPromptTemplate = "Context:\n%s\n\nQuestion:\n%s"
)
