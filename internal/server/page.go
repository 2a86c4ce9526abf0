package server

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>signspeak</title>
<style>
body { font-family: sans-serif; max-width: 32em; margin: 3em auto; text-align: center; }
button { font-size: 1.2em; padding: 0.5em 1.5em; }
#sign { margin-top: 1.5em; min-height: 200px; }
.error { color: #b00; }
</style>
</head>
<body>
<h1>signspeak</h1>
<p>Press the button and say one word.</p>
<button id="speak">Speak</button>
<form id="typed"><input name="text" placeholder="or type a word"> <button>Show</button></form>
<div id="status"></div>
<div id="sign"></div>
<script>
async function run(body) {
  const status = document.getElementById("status");
  const sign = document.getElementById("sign");
  status.textContent = body ? "Rendering..." : "Listening...";
  sign.innerHTML = "";
  const resp = await fetch("listen", { method: "POST", body: body });
  const data = await resp.json();
  if (!data.success) {
    status.innerHTML = '<span class="error"></span>';
    status.firstChild.textContent = data.error;
    return;
  }
  status.textContent = data.spoken_text + " → " + data.predicted_sign + " (" + data.predicted_label + ")";
  const img = document.createElement("img");
  img.src = data.gif_url;
  img.alt = data.predicted_sign;
  sign.appendChild(img);
}
document.getElementById("speak").onclick = () => run(null);
document.getElementById("typed").onsubmit = (e) => {
  e.preventDefault();
  run(new URLSearchParams(new FormData(e.target)));
};
</script>
</body>
</html>
`
