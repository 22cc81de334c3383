// seed_templates genera un script SQL para poblar el catálogo de plantillas
// de obligaciones tributarias (event_templates) a partir de un CSV exportado
// del sistema legado (codificado en ISO-8859-1, separado por punto y coma).
//
// Columnas esperadas: code;name;description;category;is_mandatory;recurrence_rule
//
// Uso: go run ./cmd/seed_templates [ruta/plantillas.csv]
// Por defecto busca plantillas.csv en el directorio actual.
// Escribe: seed_event_templates.sql en la raíz del módulo.
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type template struct {
	code, name, description, category string
	isMandatory                       bool
	recurrenceRule                    string
}

func main() {
	csvPath := "plantillas.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	r := csv.NewReader(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	r.Comma = ';'
	r.FieldsPerRecord = 6
	records, err := r.ReadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	var templates []template
	for i, rec := range records {
		// Cabecera opcional
		if i == 0 && strings.EqualFold(rec[0], "code") {
			continue
		}
		code := strings.TrimSpace(rec[0])
		name := strings.TrimSpace(rec[1])
		if code == "" || name == "" {
			continue
		}
		templates = append(templates, template{
			code:           code,
			name:           name,
			description:    strings.TrimSpace(rec[2]),
			category:       strings.TrimSpace(rec[3]),
			isMandatory:    strings.EqualFold(strings.TrimSpace(rec[4]), "true") || rec[4] == "1",
			recurrenceRule: strings.TrimSpace(rec[5]),
		})
	}
	if len(templates) == 0 {
		fmt.Fprintln(os.Stderr, "El CSV no contiene plantillas válidas")
		os.Exit(1)
	}

	// Orden estable por código
	sort.Slice(templates, func(i, j int) bool { return templates[i].code < templates[j].code })

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "seed_event_templates.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	out.WriteString("-- Catálogo de obligaciones tributarias (event_templates)\n")
	out.WriteString("-- Generado desde " + filepath.Base(csvPath) + "\n\n")
	out.WriteString("INSERT INTO event_templates (id, code, name, description, category, is_mandatory, recurrence_rule) VALUES\n")
	for i, t := range templates {
		sep := ","
		if i == len(templates)-1 {
			sep = ""
		}
		fmt.Fprintf(out, "  (gen_random_uuid(), '%s', '%s', '%s', '%s', %t, '%s')%s\n",
			escapeSQL(t.code), escapeSQL(t.name), escapeSQL(t.description),
			escapeSQL(t.category), t.isMandatory, escapeSQL(t.recurrenceRule), sep)
	}
	out.WriteString("ON CONFLICT (code) DO UPDATE SET\n")
	out.WriteString("  name = EXCLUDED.name,\n")
	out.WriteString("  description = EXCLUDED.description,\n")
	out.WriteString("  category = EXCLUDED.category,\n")
	out.WriteString("  is_mandatory = EXCLUDED.is_mandatory,\n")
	out.WriteString("  recurrence_rule = EXCLUDED.recurrence_rule,\n")
	out.WriteString("  updated_at = now();\n")

	fmt.Printf("Generado %s: %d plantillas\n", outPath, len(templates))
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
