package analysis

// Keyword vocabularies scanned over image descriptions. Order matters: tags
// are reported in vocabulary order.
var (
	objectVocabulary = []string{
		// vehicles
		"car", "truck", "bus", "motorcycle", "bicycle", "van", "suv", "sedan", "vehicle", "automobile",
		// buildings and structures
		"building", "house", "skyscraper", "tower", "bridge", "fence", "wall", "roof", "window", "door", "chimney", "garage", "shed", "barn",
		// natural elements
		"mountain", "hill", "tree", "forest", "lake", "river", "ocean", "sea", "water", "sky", "cloud", "sun", "moon", "star", "grass", "flower", "plant", "rock", "stone", "sand", "snow", "ice",
		// roads and infrastructure
		"road", "street", "highway", "path", "sidewalk", "traffic light", "stop sign", "sign", "billboard", "lamp post", "telephone pole",
		// furniture and household objects
		"chair", "table", "desk", "bed", "sofa", "couch", "lamp", "mirror", "picture", "painting", "clock", "phone", "computer", "laptop", "television", "tv", "book", "newspaper", "magazine",
		// clothing and accessories
		"shirt", "pants", "dress", "hat", "shoes", "bag", "backpack", "purse", "watch", "glasses", "sunglasses",
		// animals
		"dog", "cat", "bird", "fish", "horse", "cow", "sheep", "pig", "chicken", "duck", "animal",
		// food and drinks
		"food", "pizza", "burger", "sandwich", "apple", "banana", "coffee", "water bottle", "cup", "plate", "bowl",
		// technology
		"smartphone", "tablet", "camera", "headphones", "speaker", "printer", "keyboard", "mouse",
	}

	peopleVocabulary = []string{
		"person", "people", "man", "woman", "child", "boy", "girl", "baby", "adult", "teenager", "elderly", "crowd", "group",
	}

	emotionVocabulary = []string{
		"happy", "sad", "angry", "surprised", "fearful", "disgusted", "neutral", "smiling", "frowning", "laughing", "crying",
		"serious", "cheerful", "melancholic", "excited", "calm", "anxious", "relaxed", "tense", "joyful", "worried", "confident",
	}

	colorVocabulary = []string{
		"red", "blue", "green", "yellow", "orange", "purple", "pink", "brown", "black", "white", "gray", "grey", "cyan",
		"magenta", "gold", "silver", "beige", "navy", "maroon", "olive", "teal", "violet", "crimson", "azure", "emerald", "amber",
	}
)

// Scene families, checked in this order.
var sceneFamilies = []struct {
	label    string
	keywords []string
}{
	{"Indoor scene", []string{"indoor", "room", "inside", "interior"}},
	{"Outdoor scene", []string{"outdoor", "outside", "nature", "landscape", "exterior", "street", "park"}},
	{"Urban scene", []string{"urban", "city", "downtown"}},
}

// SceneUnclear is the scene tag when no family matches.
const SceneUnclear = "Mixed or unclear scene"
