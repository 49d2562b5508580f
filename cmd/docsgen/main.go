// Генерация документации сервиса в формате Markdown: таблица соответствия тегов и типов нод и перечень кодов ошибок API.
//
// Основные возможности:
//   - Таблица тегов HTML и семантических типов документа.
//   - Таблица кодов ошибок с HTTP кодами и сообщениями на английском и русском.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/aisa-it/html2doc/internal/html2doc/apierrors"
	"github.com/aisa-it/html2doc/internal/html2doc/mapper"
	md "github.com/nao1215/markdown"
)

func main() {
	outputMd := flag.String("out", "html2doc.md", "Path to output md")
	flag.Parse()

	slog.Info("Generate docs", "out", *outputMd)

	ff, err := os.Create(*outputMd)
	if err != nil {
		slog.Error("Create output file", "err", err)
		os.Exit(1)
	}
	defer ff.Close()

	if err := render(ff); err != nil {
		slog.Error("Generate docs fail", "err", err)
		os.Exit(1)
	}
	slog.Info("Docs generated")
}

func render(w io.Writer) error {
	return md.NewMarkdown(w).
		H1("html2doc").
		PlainText("Преобразование HTML в документ редактора.").
		H2("Соответствие тегов и типов").
		PlainText("Теги, отсутствующие в таблице, преобразуются в ноды без типа. Класс вида ct-some-type заменяет тип на some_type.").
		CustomTable(md.TableSet{
			Header: []string{"Тег", "Тип ноды"},
			Rows:   typeRows(),
		}, md.TableOptions{
			AutoWrapText: false,
		}).
		H2("Перечень кодов ошибок").
		PlainText("Данный раздел посвящен описанию возможных ошибок от сервера.").
		CustomTable(md.TableSet{
			Header: []string{"Код", "HTTP код", "Сообщение", "Сообщение на русском"},
			Rows:   errorRows(),
		}, md.TableOptions{
			AutoWrapText: false,
		}).
		Build()
}

func typeRows() [][]string {
	types := mapper.Types()
	rows := make([][]string, 0, len(types))
	for _, tt := range types {
		rows = append(rows, []string{md.Code("<" + tt.Tag + ">"), md.Code(tt.Type)})
	}
	return rows
}

func errorRows() [][]string {
	rows := make([][]string, 0, len(apierrors.All))
	for _, e := range apierrors.All {
		rows = append(rows, []string{
			md.Bold(strconv.Itoa(e.Code)),
			fmt.Sprintf("%d %s", e.StatusCode, md.Italic(http.StatusText(e.StatusCode))),
			md.Code(e.Err),
			md.Code(e.RuErr),
		})
	}
	return rows
}
