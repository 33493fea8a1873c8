package site

//go:generate templ generate

// FormData feeds the prediction form.
type FormData struct {
	Teams    []string
	Stadiums []string
	Notice   string
}
