// internal/webutil/validator.go
package webutil

import (
	"errors"
	"log"
	"reflect"
	"strings"

	"flashdeck/internal/model"

	"github.com/go-playground/locales/ja"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ja_translations "github.com/go-playground/validator/v10/translations/ja"
)

// Validator はアプリケーション全体で共有されるバリデータインスタンスです。
var Validator *validator.Validate

// Trans はエラーメッセージを翻訳するためのトランスレータです。
var Trans ut.Translator

var fieldNameTranslations = map[string]string{
	"name":          "データセット名",
	"term":          "用語",
	"definition":    "定義",
	"pairs":         "ペア一覧",
	"correct":       "回答の正誤",
	"index":         "カード番号",
	"key":           "キー",
	"text":          "読み上げテキスト",
	"autoPlayDelay": "自動再生間隔",
	"ttsRate":       "読み上げ速度",
	"ttsVolume":     "読み上げ音量",
}

func init() {
	Validator = validator.New()

	// JSONタグからフィールド名を取得するように設定
	Validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// 日本語のロケールとトランスレータを設定
	japanese := ja.New()
	uni := ut.New(japanese, japanese)
	var found bool
	Trans, found = uni.GetTranslator("ja")
	if !found {
		log.Fatal("translator not found")
	}

	if err := ja_translations.RegisterDefaultTranslations(Validator, Trans); err != nil {
		log.Fatal(err)
	}

	// タグごとのメッセージを登録するヘルパー。フィールド名は日本語マップで置き換える
	registerTranslation := func(tag string, msg string) {
		Validator.RegisterTranslation(tag, Trans, func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			fieldName := fe.Field()
			translatedFieldName, ok := fieldNameTranslations[fieldName]
			if !ok {
				translatedFieldName = fieldName
			}
			t, _ := ut.T(tag, translatedFieldName, fe.Param())
			return t
		})
	}

	registerTranslation("required", "{0}は必須項目です。")
	registerTranslation("min", "{0}は{1}以上で指定してください。")
	registerTranslation("max", "{0}は{1}以下で指定してください。")
	registerTranslation("gt", "{0}は{1}より大きい値で指定してください。")
	registerTranslation("gte", "{0}は{1}以上の値で指定してください。")
	registerTranslation("lte", "{0}は{1}以下の値で指定してください。")
}

// TranslateValidationError はバリデーションエラーを日本語メッセージのAppErrorへ変換します
func TranslateValidationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return model.ErrInvalidInput
	}

	var fields []string
	var messages []string
	for _, fe := range errs {
		fields = append(fields, fe.Field())
		messages = append(messages, fe.Translate(Trans))
	}

	return model.NewAppError(
		"VALIDATION_ERROR",
		strings.Join(messages, " "),
		strings.Join(fields, ","),
		model.ErrInvalidInput,
	)
}
