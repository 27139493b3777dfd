// Package docs Heritage Sites Service API.
//
// Сервис локального кеша объектов культурного наследия с двусторонней
// синхронизацией против удалённого документного хранилища.
//
// Основные возможности:
// - Чтение кеша сайтов с best-effort подтягиванием удалённой коллекции
// - Полная двусторонняя синхронизация (сайты, избранное, посещённое)
// - Текстовый поиск по кешу
// - Редактирование и пересчёт nearby-списков с геодистанциями
// - CRUD сайтов для админ-панели
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
//	Security:
//	- api_key:
//
//	SecurityDefinitions:
//	api_key:
//	     type: apiKey
//	     name: Authorization
//	     in: header
//
// swagger:meta
package docs
