// Package models описывает доменные сущности сервера: отпуска, задачи,
// бюджеты с категориями и расходами, документы и уведомления.
//
// Вложенные списки (направления, участники, адресаты документа) хранятся
// в одной колонке как JSON, но в Go это типизированные значения со своими
// реализациями sql.Scanner и driver.Valuer. Категории бюджета вынесены
// в отдельную таблицу.
//
// Частичные обновления описываются типами *Patch: nil-поле означает
// "оставить как есть".
//
// Денежные суммы - decimal.Decimal. Формат JSON (число или строка)
// задается при запуске сервера.
package models
