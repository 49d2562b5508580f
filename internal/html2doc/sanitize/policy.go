// Политика очистки входного HTML от небезопасной разметки перед преобразованием в документ.
//
// За основу взята bluemonday.UGCPolicy, к которой добавлены атрибуты и стили, читаемые преобразователем:
//   - data-* атрибуты на любых элементах.
//   - Классы ct-* для переопределения типа ноды.
//   - Цвет, размеры и выравнивание в style.
//   - colspan, rowspan и colwidth у ячеек таблиц.
package sanitize

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// UgcPolicy политика для пользовательского контента
var UgcPolicy *bluemonday.Policy = bluemonday.UGCPolicy()

func init() {
	classRegexp := regexp.MustCompile(`^[\w\s-]*\bct-[\w-]+[\w\s-]*$`)
	colorRegexp := regexp.MustCompile(`^(#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})|rgba?\(\s*\d+\s*,\s*\d+\s*,\s*\d+\s*(,\s*[\d.]+\s*)?\)|[a-zA-Z]+)$`)
	sizeRegexp := regexp.MustCompile(`^(\d+(\.\d+)?(px|em|rem|ex|pt|in|pc|mm|cm|Q|vh|vw|vmax|vmin|%)?|auto|max-content|min-content|fit-content|inherit|initial|unset)$`)
	colwidthRegexp := regexp.MustCompile(`^\d+(,\d+)*$`)

	UgcPolicy.AllowDataAttributes()
	UgcPolicy.AllowAttrs("class").Matching(classRegexp).Globally()

	UgcPolicy.AllowAttrs("colwidth").Matching(colwidthRegexp).OnElements("td", "th", "col")
	UgcPolicy.AllowAttrs("colspan", "rowspan").Matching(bluemonday.Integer).OnElements("td", "th")

	UgcPolicy.AllowStyles("color", "background-color").Matching(colorRegexp).Globally()
	UgcPolicy.AllowStyles("width", "height", "font-size").Matching(sizeRegexp).Globally()
	UgcPolicy.AllowStyles("text-align").Matching(bluemonday.CellAlign).Globally()

	UgcPolicy.AllowElements("center", "font", "u", "s", "del", "sub", "sup")
}

// HTML очищает разметку по UgcPolicy.
func HTML(src string) string {
	return UgcPolicy.Sanitize(src)
}
