// internal/models/field_template.go
package models

// FieldTemplate описывает форму для конкретной категории предмета.
// Мобильный клиент рендерит поля как есть; значения уходят в Features.
type FieldTemplate struct {
	Category string      `json:"category"`
	Fields   []FormField `json:"fields"`
}

type FormField struct {
	Label      string `json:"label"`
	Hint       string `json:"hint"`
	IsRequired bool   `json:"is_required"`
	InputType  string `json:"input_type"`
}

// Типы полей формы
const (
	InputTypeText   = "text"
	InputTypeNumber = "number"
	InputTypeDate   = "date"
	InputTypeSelect = "select"
	InputTypeRadio  = "radio"
)

// fieldTemplates — статическая конфигурация форм по категориям.
// Метки полей совпадают с ключами Features и с keyFields ниже.
var fieldTemplates = map[string][]FormField{
	CategoryCampusCard: {
		{Label: "证件号后四位", Hint: "输入后四位数字", IsRequired: true, InputType: InputTypeNumber},
		{Label: "卡套颜色", Hint: "如黑色、蓝色", IsRequired: true, InputType: InputTypeText},
		{Label: "卡面特征", Hint: "如贴照片、有划痕", IsRequired: false, InputType: InputTypeText},
		{Label: "校区", Hint: "选择校区", IsRequired: true, InputType: InputTypeSelect},
	},
	CategoryKeys: {
		{Label: "钥匙串数量", Hint: "输入数量", IsRequired: true, InputType: InputTypeNumber},
		{Label: "钥匙串特征", Hint: "如挂绳、挂件", IsRequired: true, InputType: InputTypeText},
		{Label: "位置描述", Hint: "描述具体位置", IsRequired: true, InputType: InputTypeText},
		{Label: "钥匙颜色", Hint: "银色/黑色/其他", IsRequired: false, InputType: InputTypeText},
	},
	CategoryHeadphones: {
		{Label: "耳机品牌", Hint: "苹果/华为/小米等", IsRequired: true, InputType: InputTypeSelect},
		{Label: "耳机类型", Hint: "有线/无线", IsRequired: true, InputType: InputTypeRadio},
		{Label: "外观特征", Hint: "描述颜色、磨损等", IsRequired: true, InputType: InputTypeText},
		{Label: "场景", Hint: "教室/图书馆等", IsRequired: false, InputType: InputTypeSelect},
	},
}

var defaultTemplate = []FormField{
	{Label: "物品描述", Hint: "请详细描述物品特征", IsRequired: true, InputType: InputTypeText},
}

// GetFieldTemplate возвращает шаблон формы для категории.
func GetFieldTemplate(category string) FieldTemplate {
	if fields, exists := fieldTemplates[category]; exists {
		return FieldTemplate{Category: category, Fields: fields}
	}
	return FieldTemplate{Category: category, Fields: defaultTemplate}
}

// keyFields — поля, по которым считается похожесть предметов.
// Для категорий без списка сравниваются все поля найденного предмета.
var keyFields = map[string][]string{
	CategoryCampusCard: {"证件号后四位", "卡套颜色"},
	CategoryKeys:       {"钥匙串数量", "钥匙颜色"},
	CategoryHeadphones: {"耳机品牌", "耳机类型"},
}

// KeyFieldsForCategory возвращает список ключевых полей категории
// или nil, если категория сравнивается по всем полям.
func KeyFieldsForCategory(category string) []string {
	return keyFields[category]
}

// matchThresholds — минимальная похожесть для подтверждения совпадения.
var matchThresholds = map[string]float64{
	CategoryCampusCard:  0.9, // документ, нужна высокая точность
	CategoryKeys:        0.7,
	CategoryHeadphones:  0.8,
	CategoryWallet:      0.75,
	CategoryClothes:     0.5,
	CategoryBackpack:    0.65,
	CategoryElectronics: 0.7,
	CategoryOthers:      0.6,
}

const defaultMatchThreshold = 0.6

// MatchThresholdForCategory возвращает порог категории или дефолт.
func MatchThresholdForCategory(category string) float64 {
	if t, exists := matchThresholds[category]; exists {
		return t
	}
	return defaultMatchThreshold
}
