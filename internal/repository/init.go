package repository

type Repositories struct {
	ClientConfigs ClientConfigRepository
}

func InitRepositories(clientsDir string) *Repositories {
	return &Repositories{
		ClientConfigs: NewClientConfigRepository(clientsDir),
	}
}
