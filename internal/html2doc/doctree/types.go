// Пакет doctree описывает выходную модель документа редактора: дерево нод с типом, упорядоченными атрибутами,
// вложенным содержимым или текстом и списком марок форматирования.
//
// Основные возможности:
//   - Ноды документа (doc, paragraph, table_cell и т.д.) и марки (strong, color).
//   - Атрибуты с разнотипными значениями (строка, bool, число, список чисел) с сохранением порядка вставки.
//   - Сериализация в JSON, YAML и MessagePack с одинаковым порядком ключей.
//   - Вспомогательные функции обхода дерева и подсчета статистики.
package doctree

// Семантические типы нод
const (
	TypeDoc            = "doc"
	TypeText           = "text"
	TypeParagraph      = "paragraph"
	TypeHeading        = "heading"
	TypeBulletList     = "bullet_list"
	TypeOrderedList    = "ordered_list"
	TypeListItem       = "list_item"
	TypeBlockquote     = "blockquote"
	TypeCodeBlock      = "code_block"
	TypeLink           = "link"
	TypeImage          = "image"
	TypeHardBreak      = "hard_break"
	TypeEm             = "em"
	TypeStrong         = "strong"
	TypeCode           = "code"
	TypeStrike         = "strike"
	TypeHorizontalRule = "horizontal_rule"
	TypeTable          = "table"
	TypeTableBody      = "table_body" // существует только во время преобразования
	TypeTableRow       = "table_row"
	TypeTableHeader    = "table_header"
	TypeTableCell      = "table_cell"
	TypeSpan           = "span"
	TypeUnderline      = "underline"
	TypeSubscript      = "subscript"
	TypeSuperscript    = "superscript"

	// Типы, приходящие только из классов ct-*
	TypeCollapse        = "collapse"
	TypeCollapseContent = "collapse_content"
)

// Типы марок
const (
	MarkStrong = "strong"
	MarkColor  = "color"
)
