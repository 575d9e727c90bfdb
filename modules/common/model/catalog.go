package model

// Emotions - 선택 가능한 감정 목록 (UI 노출 순서)
var Emotions = []Emotion{
	{ID: "happy", Name: "Happy", Description: "Joyful and upbeat expression", Color: "#FFD700", Icon: "😊"},
	{ID: "sad", Name: "Sad", Description: "Melancholy and thoughtful", Color: "#6495ED", Icon: "😢"},
	{ID: "motivational", Name: "Motivational", Description: "Inspiring and energetic", Color: "#FF6347", Icon: "💪"},
	{ID: "calm", Name: "Calm", Description: "Peaceful and serene", Color: "#98FB98", Icon: "😌"},
	{ID: "angry", Name: "Angry", Description: "Intense and passionate", Color: "#DC143C", Icon: "😠"},
	{ID: "excited", Name: "Excited", Description: "Enthusiastic and energetic", Color: "#FF1493", Icon: "🤩"},
	{ID: "professional", Name: "Professional", Description: "Confident and authoritative", Color: "#4169E1", Icon: "👔"},
	{ID: "romantic", Name: "Romantic", Description: "Warm and affectionate", Color: "#FF69B4", Icon: "💕"},
}

// FindEmotion - id로 감정 조회
func FindEmotion(id string) (Emotion, bool) {
	for _, e := range Emotions {
		if e.ID == id {
			return e, true
		}
	}
	return Emotion{}, false
}

// AvailableVoices - 직접 고를 수 있는 음성 목록
var AvailableVoices = []Voice{
	// English - Male
	{ID: "en-US-JasonNeural", Name: "Jason", Gender: GenderMale, Language: LanguageEnglish, Description: "Confident American male", Accent: "US"},
	{ID: "en-US-TonyNeural", Name: "Tony", Gender: GenderMale, Language: LanguageEnglish, Description: "Energetic American male", Accent: "US"},
	{ID: "en-US-GuyNeural", Name: "Guy", Gender: GenderMale, Language: LanguageEnglish, Description: "Warm American male", Accent: "US"},
	{ID: "en-US-BrianNeural", Name: "Brian", Gender: GenderMale, Language: LanguageEnglish, Description: "Professional American male", Accent: "US"},
	{ID: "en-US-ChristopherNeural", Name: "Christopher", Gender: GenderMale, Language: LanguageEnglish, Description: "Authoritative American male", Accent: "US"},
	{ID: "en-US-EricNeural", Name: "Eric", Gender: GenderMale, Language: LanguageEnglish, Description: "Calm American male", Accent: "US"},
	{ID: "en-US-RyanNeural", Name: "Ryan", Gender: GenderMale, Language: LanguageEnglish, Description: "Young American male", Accent: "US"},
	{ID: "en-US-BrandonNeural", Name: "Brandon", Gender: GenderMale, Language: LanguageEnglish, Description: "Friendly American male", Accent: "US"},
	{ID: "en-GB-RyanNeural", Name: "Ryan (British)", Gender: GenderMale, Language: LanguageEnglish, Description: "British male", Accent: "UK"},
	{ID: "en-AU-WilliamNeural", Name: "William", Gender: GenderMale, Language: LanguageEnglish, Description: "Australian male", Accent: "AU"},

	// English - Female
	{ID: "en-US-JennyNeural", Name: "Jenny", Gender: GenderFemale, Language: LanguageEnglish, Description: "Cheerful American female", Accent: "US"},
	{ID: "en-US-AriaNeural", Name: "Aria", Gender: GenderFemale, Language: LanguageEnglish, Description: "Professional American female", Accent: "US"},
	{ID: "en-US-SaraNeural", Name: "Sara", Gender: GenderFemale, Language: LanguageEnglish, Description: "Gentle American female", Accent: "US"},
	{ID: "en-US-EmmaNeural", Name: "Emma", Gender: GenderFemale, Language: LanguageEnglish, Description: "Business American female", Accent: "US"},
	{ID: "en-US-MichelleNeural", Name: "Michelle", Gender: GenderFemale, Language: LanguageEnglish, Description: "Confident American female", Accent: "US"},
	{ID: "en-US-NancyNeural", Name: "Nancy", Gender: GenderFemale, Language: LanguageEnglish, Description: "Motivational American female", Accent: "US"},
	{ID: "en-US-MonicaNeural", Name: "Monica", Gender: GenderFemale, Language: LanguageEnglish, Description: "Calm American female", Accent: "US"},
	{ID: "en-US-DavisNeural", Name: "Davis", Gender: GenderNeutral, Language: LanguageEnglish, Description: "Neutral American voice", Accent: "US"},
	{ID: "en-GB-SoniaNeural", Name: "Sonia (British)", Gender: GenderFemale, Language: LanguageEnglish, Description: "British female", Accent: "UK"},
	{ID: "en-AU-NatashaNeural", Name: "Natasha", Gender: GenderFemale, Language: LanguageEnglish, Description: "Australian female", Accent: "AU"},

	// Tamil
	{ID: "ta-IN-ValluvarNeural", Name: "வள்ளுவர் (Valluvar)", Gender: GenderMale, Language: LanguageTamil, Description: "Tamil male voice"},
	{ID: "ta-IN-PallaviNeural", Name: "பல்லவி (Pallavi)", Gender: GenderFemale, Language: LanguageTamil, Description: "Tamil female voice"},

	// International English
	{ID: "en-CA-LiamNeural", Name: "Liam (Canadian)", Gender: GenderMale, Language: LanguageEnglish, Description: "Canadian male", Accent: "CA"},
	{ID: "en-CA-ClaraNeural", Name: "Clara (Canadian)", Gender: GenderFemale, Language: LanguageEnglish, Description: "Canadian female", Accent: "CA"},
	{ID: "en-IN-NeerjaNeural", Name: "Neerja (Indian)", Gender: GenderFemale, Language: LanguageEnglish, Description: "Indian English female", Accent: "IN"},
	{ID: "en-IN-PrabhatNeural", Name: "Prabhat (Indian)", Gender: GenderMale, Language: LanguageEnglish, Description: "Indian English male", Accent: "IN"},
}

// FindVoice - id로 음성 조회
func FindVoice(id string) (Voice, bool) {
	for _, v := range AvailableVoices {
		if v.ID == id {
			return v, true
		}
	}
	return Voice{}, false
}

// VoicesFor - 언어/성별로 필터링 (빈 값은 전체)
func VoicesFor(language Language, gender Gender) []Voice {
	var out []Voice
	for _, v := range AvailableVoices {
		if language != "" && v.Language != language {
			continue
		}
		if gender != "" && v.Gender != gender {
			continue
		}
		out = append(out, v)
	}
	return out
}
