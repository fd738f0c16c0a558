package editor

const RequiredField = "Campo obbligatorio *"

// Messages holds the notification text for each outcome of one entity.
type Messages struct {
	Created              string
	Updated              string
	Deleted              string
	LoadFailed           string
	CreateFailed         string
	UpdateFailed         string
	DeleteFailed         string
	RemoveOldImageFailed string
	UpdateImageFailed    string
	AddImageFailed       string
	OrphanImage          string
}

var (
	CategoryMessages = Messages{
		Created:              "Categoria creata con successo",
		Updated:              "Categoria aggiornata con successo",
		Deleted:              "Categoria eliminata con successo",
		LoadFailed:           "Impossibile recuperare la categoria",
		CreateFailed:         "Impossibile creare la categoria",
		UpdateFailed:         "Impossibile aggiornare la categoria",
		DeleteFailed:         "Impossibile eliminare la categoria",
		RemoveOldImageFailed: "Impossibile cancellare l'immagine precedente",
		UpdateImageFailed:    "Impossibile aggiornare l'immagine della categoria",
		AddImageFailed:       "Impossibile aggiungere l'immagine alla categoria",
		OrphanImage:          "Categoria eliminata, ma non è stato possibile cancellarne l'immagine",
	}
	IngredientMessages = Messages{
		Created:      "Ingrediente creato con successo",
		Updated:      "Ingrediente aggiornato con successo",
		Deleted:      "Ingrediente eliminato con successo",
		LoadFailed:   "Impossibile recuperare l'ingrediente",
		CreateFailed: "Impossibile creare l'ingrediente",
		UpdateFailed: "Impossibile aggiornare l'ingrediente",
		DeleteFailed: "Impossibile eliminare l'ingrediente",
	}
	RecipeMessages = Messages{
		Created:              "Ricetta creata con successo",
		Updated:              "Ricetta aggiornata con successo",
		Deleted:              "Ricetta eliminata con successo",
		LoadFailed:           "Impossibile recuperare la ricetta",
		CreateFailed:         "Impossibile creare la ricetta",
		UpdateFailed:         "Impossibile aggiornare la ricetta",
		DeleteFailed:         "Impossibile eliminare la ricetta",
		RemoveOldImageFailed: "Impossibile cancellare l'immagine precedente",
		UpdateImageFailed:    "Impossibile aggiornare l'immagine della ricetta",
		AddImageFailed:       "Impossibile aggiungere l'immagine alla ricetta",
		OrphanImage:          "Ricetta eliminata, ma non è stato possibile cancellarne l'immagine",
	}
)

const (
	msgIngredientExists    = "Ingrediente già presente nella ricetta"
	msgIngredientAdded     = "Ingrediente inserito con successo"
	msgIngredientAddFailed = "Impossibile aggiungere l'ingrediente"
	msgIngredientRemoved   = "Ingrediente eliminato con successo"
	msgIngredientRmFailed  = "Impossibile eliminare l'ingrediente"
	msgIngredientsReload   = "Impossibile recuperare gli ingredienti"
	msgStepAdded           = "Step aggiunto con successo"
	msgStepAddFailed       = "Impossibile aggiungere lo step"
	msgStepRemoved         = "Step eliminato con successo"
	msgStepRmFailed        = "Impossibile eliminare lo step"
	msgStepsReload         = "Impossibile recuperare gli step del procedimento"
	msgStepsMoved          = "Ordine del procedimento aggiornato"
	msgStepsMoveFailed     = "Impossibile aggiornare l'ordine del procedimento"
	msgInvalidMove         = "Spostamento non valido"
	msgFavouriteFailed     = "Impossibile aggiornare i preferiti"
)
