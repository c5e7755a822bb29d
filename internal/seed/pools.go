package seed

var sampleNames = []string{
	"Alice Johnson", "Bob Smith", "Charlie Brown", "Diana Prince", "Ethan Hunt",
	"Fiona Gallagher", "George Miller", "Hannah Scott", "Ian McGregor", "Julia Adams",
	"Kevin Parker", "Laura Chen", "Michael Jordan", "Nina Williams", "Oscar Wilde",
	"Paula Simmons", "Quincy Jones", "Rachel Green", "Sam Fisher", "Tina Turner",
	"Uma Thurman", "Victor Stone", "Wendy Harris", "Xander Cage", "Yara Shahidi",
	"Zane Malik",
}

var sampleTitles = []string{
	"The Future of AI", "Healthy Living", "Travel Diaries", "Python Tips", "Movie Review",
	"Space Exploration", "Music Trends", "Sports Highlights", "Cooking Hacks", "Tech Startups",
	"Mindfulness Practice", "Climate Change", "History Facts", "Photography Basics",
	"Gaming Culture", "Financial Freedom", "Work-Life Balance", "Book Reviews", "Art Movements",
	"Education in 21st Century",
}

var sampleContents = []string{
	"Artificial Intelligence is rapidly transforming industries worldwide.",
	"Maintaining a balanced diet and regular exercise is key to healthy living.",
	"Exploring Japan was a dream come true, with its culture and food.",
	"List comprehensions are a powerful way to write cleaner code in Python.",
	"The latest blockbuster was thrilling and action-packed, worth watching twice.",
	"SpaceX has revolutionized modern space exploration with reusable rockets.",
	"Streaming platforms have completely changed how we consume music.",
	"The last NBA season had unforgettable moments and legendary plays.",
	"Quick and easy cooking hacks can save you hours in the kitchen.",
	"Tech startups are disrupting industries with new innovations every year.",
	"Mindfulness meditation reduces stress and improves focus significantly.",
	"Global warming continues to pose major challenges to humanity.",
	"Ancient civilizations provide insights into our modern world.",
	"Photography basics like lighting and framing make a huge difference.",
	"Gaming culture is booming with esports and online communities.",
	"Financial independence requires discipline, saving, and investments.",
	"Maintaining work-life balance improves mental and physical health.",
	"Book reviews help readers find the right story at the right time.",
	"Art movements shape the way we perceive creativity and culture.",
	"Education in the 21st century must adapt to digital innovation.",
}

var sampleComments = []string{
	"Great post, very informative!",
	"I totally agree with your points.",
	"Thanks for sharing this valuable insight.",
	"Could you expand more on this topic?",
	"I had a different experience, but this is insightful.",
	"Love the way you explained it!",
	"This is exactly what I was looking for.",
	"Interesting perspective, thanks!",
	"I think there are other sides to consider.",
	"Well-written and easy to understand.",
	"This is going to help me in my project.",
	"Do you have references for this?",
	"Super helpful, keep it up!",
	"I learned something new today.",
	"This resonates with my experience.",
	"Looking forward to more posts like this.",
	"Clear and concise explanation.",
	"Brilliantly written!",
	"I respectfully disagree with this point.",
	"Could you provide some examples?",
}
