package config

// AdminList список ID администраторов студии из конфигурации
type AdminList map[int64]struct{}

// NewAdminList создает AdminList из списка ID
func NewAdminList(ids []int64) AdminList {
	admins := make(AdminList, len(ids))
	for _, id := range ids {
		admins[id] = struct{}{}
	}
	return admins
}

// IsAdmin возвращает true, если пользователь является администратором
func (a AdminList) IsAdmin(userID int64) bool {
	_, ok := a[userID]
	return ok
}
