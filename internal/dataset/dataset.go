package dataset

// Record is one multiple-choice question as stored in the benchmark.
type Record struct {
	Question         string
	CorrectAnswer    string
	IncorrectAnswers []string
	Domain           string
	Subdomain        string
}

// Provider serves question records by stable integer index.
type Provider interface {
	Len() int
	Question(index int) (Record, error)
}
