package templates

import (
	"bufio"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"regexp"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tdewolff/minify"

	"github.com/ethpandaops/brubeckscan/utils"
)

var logger = logrus.StandardLogger().WithField("module", "templates")

var (
	//go:embed _layout index node
	Files embed.FS
)

var templateCache = make(map[string]*template.Template)
var templateCacheMux = &sync.RWMutex{}
var templateFuncs = utils.GetTemplateFuncs()

var (
	minifyNewlines = regexp.MustCompile(`([ \t]+)?[\r\n]+`)
	minifySpaces   = regexp.MustCompile(`([ \t])[ \t]+`)
)

func isDebug() bool {
	return utils.Config != nil && utils.Config.Frontend.Debug
}

func isMinify() bool {
	return utils.Config != nil && utils.Config.Frontend.Minify
}

// GetTemplate returns the parsed template set for the given files.
// In debug mode the templates are read from the working directory on every call.
func GetTemplate(files ...string) *template.Template {
	name := strings.Join(files, "-")

	if isDebug() {
		templateFiles := make([]string, len(files))
		for i := range files {
			if strings.HasPrefix(files[i], "templates") {
				templateFiles[i] = files[i]
			} else {
				templateFiles[i] = "templates/" + files[i]
			}
		}
		return template.Must(template.New(name).Funcs(templateFuncs).ParseFiles(templateFiles...))
	}

	templateCacheMux.RLock()
	if templateCache[name] != nil {
		defer templateCacheMux.RUnlock()
		return templateCache[name]
	}
	templateCacheMux.RUnlock()

	tmpl := template.New(name).Funcs(templateFuncs)
	tmpl = template.Must(parseTemplateFiles(tmpl, readFileFS(Files), files...))
	templateCacheMux.Lock()
	defer templateCacheMux.Unlock()
	templateCache[name] = tmpl
	return templateCache[name]
}

func readFileFS(fsys fs.FS) func(string) (string, []byte, error) {
	return func(file string) (name string, b []byte, err error) {
		name = path.Base(file)
		b, err = fs.ReadFile(fsys, file)
		if err != nil || !isMinify() {
			return
		}

		m := minify.New()
		m.AddFunc("text/html", minifyTemplate)
		b, err = m.Bytes("text/html", b)
		return
	}
}

func minifyTemplate(m *minify.M, w io.Writer, r io.Reader, _ map[string]string) error {
	rb := bufio.NewReader(r)
	for {
		line, err := rb.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		line = minifyNewlines.ReplaceAllString(line, "")
		line = minifySpaces.ReplaceAllString(line, " ")
		if _, errws := io.WriteString(w, line); errws != nil {
			return errws
		}
		if err == io.EOF {
			break
		}
	}
	return nil
}

func parseTemplateFiles(t *template.Template, readFile func(string) (string, []byte, error), filenames ...string) (*template.Template, error) {
	for _, filename := range filenames {
		name, b, err := readFile(filename)
		if err != nil {
			return nil, err
		}
		var tmpl *template.Template
		if name == t.Name() {
			tmpl = t
		} else {
			tmpl = t.New(name)
		}
		if _, err = tmpl.Parse(string(b)); err != nil {
			return nil, fmt.Errorf("error parsing template %v: %w", filename, err)
		}
	}
	return t, nil
}

// GetTemplateNames returns all embedded template files
func GetTemplateNames() []string {
	files, _ := getFileSysNames(Files, ".")
	return files
}

func getFileSysNames(fsys fs.FS, dirname string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dirname)
	if err != nil {
		return nil, fmt.Errorf("error reading embed directory, err: %w", err)
	}

	files := make([]string, 0, 16)
	for _, entry := range entries {
		entryPath := path.Join(dirname, entry.Name())
		if !entry.IsDir() {
			files = append(files, entryPath)
			continue
		}
		names, err := getFileSysNames(fsys, entryPath)
		if err != nil {
			return nil, err
		}
		files = append(files, names...)
	}

	logger.Debugf("found %v template files in %v", len(files), dirname)
	return files, nil
}
