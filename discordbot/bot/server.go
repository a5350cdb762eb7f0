package bot

type server struct {
	prefixes map[string]string
}
